// Package semantic lowers a surface ast.Script into a resolved
// sem.Script: every identifier becomes a concrete symbol, constant
// expressions are folded at compile time, enums and top-level
// constants are erased into the literal values they name, and
// annotations are recognized against the fixed set internal/codegen
// understands. Diagnostics accumulate in a diag.CompilerLog rather
// than aborting on the first problem, mirroring the teacher's own
// internal/compiler passes that keep walking a malformed tree to
// surface as much as possible in one run.
package semantic

import (
	"fmt"

	"exalt/internal/ast"
	"exalt/internal/diag"
	"exalt/internal/sem"
)

// Analyzer holds the whole-program symbol tables built during the
// forward-declaration pass and consumed while lowering bodies.
type Analyzer struct {
	log *diag.CompilerLog

	consts    map[string]*sem.ConstSymbol
	enums     map[string]*sem.EnumSymbol
	functions map[string]*sem.FunctionSymbol
	globals   map[string]*sem.VarSymbol
	globalOrder []string
	aliases   map[string]string // function alias name -> aliased name
}

// NewAnalyzer returns an Analyzer that reports into log.
func NewAnalyzer(log *diag.CompilerLog) *Analyzer {
	return &Analyzer{
		log:       log,
		consts:    make(map[string]*sem.ConstSymbol),
		enums:     make(map[string]*sem.EnumSymbol),
		functions: make(map[string]*sem.FunctionSymbol),
		globals:   make(map[string]*sem.VarSymbol),
		aliases:   make(map[string]string),
	}
}

// Analyze performs forward declaration, constant folding, then body
// lowering, and returns the fully resolved program. The result may be
// incomplete if log.HasErrors() afterward — callers should check that
// before handing the script to internal/codegen.
func (a *Analyzer) Analyze(script *ast.Script) *sem.Script {
	a.forwardDeclare(script)
	out := &sem.Script{}
	for _, decl := range script.Decls {
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			out.Decls = append(out.Decls, a.lowerFunction(d))
		case *ast.CallbackDecl:
			out.Decls = append(out.Decls, a.lowerCallback(d))
		}
	}
	out.Globals = len(a.globalOrder)
	return out
}

// forwardDeclare registers every const, enum, global, alias, extern
// and function before any body is lowered, so forward references
// (a function calling one declared later in the file) resolve.
func (a *Analyzer) forwardDeclare(script *ast.Script) {
	for _, decl := range script.Decls {
		switch d := decl.(type) {
		case *ast.ConstDecl:
			a.declareConst(d)
		case *ast.EnumDecl:
			a.declareEnum(d)
		case *ast.GlobalDecl:
			a.declareGlobal(d)
		case *ast.FunctionAliasDecl:
			a.aliases[d.Name.Value] = d.Alias.Value
		case *ast.FunctionExternDecl:
			a.functions[d.Name.Value] = &sem.FunctionSymbol{Name: d.Name.Value, Arity: len(d.Parameters)}
		}
	}
	for _, decl := range script.Decls {
		switch d := decl.(type) {
		case *ast.FunctionDecl:
			if _, dup := a.functions[d.Name.Value]; dup {
				a.err(diag.KindSymbolRedefinition, d.Location, "function %q is already defined", d.Name.Value)
				continue
			}
			a.functions[d.Name.Value] = &sem.FunctionSymbol{Name: d.Name.Value, Arity: len(d.Parameters)}
		}
	}
}

func (a *Analyzer) declareConst(d *ast.ConstDecl) {
	if _, dup := a.consts[d.Name.Value]; dup {
		a.err(diag.KindSymbolRedefinition, d.Location, "constant %q is already defined", d.Name.Value)
		return
	}
	val, ok := a.foldConst(d.Value)
	if !ok {
		a.err(diag.KindExpectedConstExpr, d.Value.ExprLocation(), "constant initializer must be a compile-time constant")
		return
	}
	a.consts[d.Name.Value] = &sem.ConstSymbol{Name: d.Name.Value, Value: val}
}

func (a *Analyzer) declareEnum(d *ast.EnumDecl) {
	if _, dup := a.enums[d.Name.Value]; dup {
		a.err(diag.KindSymbolRedefinition, d.Location, "enum %q is already defined", d.Name.Value)
		return
	}
	sym := &sem.EnumSymbol{Name: d.Name.Value, Variants: make(map[string]*sem.ConstSymbol)}
	next := int32(0)
	for _, variant := range d.Variants {
		val := ast.Literal{Kind: ast.LiteralInt, Int: next}
		if variant.Value != nil {
			folded, ok := a.foldConst(variant.Value)
			if !ok {
				a.err(diag.KindExpectedConstExpr, variant.Value.ExprLocation(), "enum variant value must be a compile-time constant")
				continue
			}
			val = folded
		}
		if val.Kind == ast.LiteralInt {
			next = val.Int + 1
		}
		cs := &sem.ConstSymbol{Name: variant.Name.Value, Value: val}
		sym.Variants[variant.Name.Value] = cs
		sym.Order = append(sym.Order, variant.Name.Value)
	}
	a.enums[d.Name.Value] = sym
}

func (a *Analyzer) declareGlobal(d *ast.GlobalDecl) {
	if _, dup := a.globals[d.Name.Value]; dup {
		a.err(diag.KindSymbolRedefinition, d.Location, "global %q is already defined", d.Name.Value)
		return
	}
	sym := &sem.VarSymbol{Name: d.Name.Value, Global: true, FrameID: len(a.globalOrder)}
	a.globals[d.Name.Value] = sym
	a.globalOrder = append(a.globalOrder, d.Name.Value)
}

// foldConst evaluates an expression at compile time; only literals and
// references to already-declared consts/enum variants are foldable,
// matching the original's const-eval restriction to a small
// expression subset.
func (a *Analyzer) foldConst(e ast.Expr) (ast.Literal, bool) {
	switch expr := e.(type) {
	case *ast.LiteralExpr:
		return expr.Value, true
	case *ast.EnumAccessExpr:
		enum, ok := a.enums[expr.Enum.Value]
		if !ok {
			a.err(diag.KindUndefinedEnum, expr.Location, "undefined enum %q", expr.Enum.Value)
			return ast.Literal{}, false
		}
		variant, ok := enum.Variants[expr.Variant.Value]
		if !ok {
			a.err(diag.KindUndefinedVariant, expr.Location, "enum %q has no variant %q", expr.Enum.Value, expr.Variant.Value)
			return ast.Literal{}, false
		}
		return variant.Value, true
	case *ast.UnaryExpr:
		operand, ok := a.foldConst(expr.Operand)
		if !ok {
			return ast.Literal{}, false
		}
		return foldUnary(expr.Op, operand)
	case *ast.BinaryExpr:
		left, ok := a.foldConst(expr.Left)
		if !ok {
			return ast.Literal{}, false
		}
		right, ok := a.foldConst(expr.Right)
		if !ok {
			return ast.Literal{}, false
		}
		return foldBinary(expr.Op, left, right)
	case *ast.GroupedExpr:
		return a.foldConst(expr.Inner)
	case *ast.RefExpr:
		if v, ok := expr.Ref.(*ast.VarRef); ok {
			if c, ok := a.consts[v.Ident.Value]; ok {
				return c.Value, true
			}
		}
		return ast.Literal{}, false
	default:
		return ast.Literal{}, false
	}
}

func foldUnary(op ast.Operator, v ast.Literal) (ast.Literal, bool) {
	switch op {
	case ast.OpNegate:
		if v.Kind == ast.LiteralInt {
			return ast.Literal{Kind: ast.LiteralInt, Int: -v.Int}, true
		}
	case ast.OpFloatNegate:
		if v.Kind == ast.LiteralFloat {
			return ast.Literal{Kind: ast.LiteralFloat, Float: -v.Float}, true
		}
	case ast.OpBitwiseNot:
		if v.Kind == ast.LiteralInt {
			return ast.Literal{Kind: ast.LiteralInt, Int: ^v.Int}, true
		}
	}
	return ast.Literal{}, false
}

func foldBinary(op ast.Operator, l, r ast.Literal) (ast.Literal, bool) {
	if l.Kind != ast.LiteralInt || r.Kind != ast.LiteralInt {
		return ast.Literal{}, false
	}
	switch op {
	case ast.OpAdd:
		return ast.Literal{Kind: ast.LiteralInt, Int: l.Int + r.Int}, true
	case ast.OpSubtract:
		return ast.Literal{Kind: ast.LiteralInt, Int: l.Int - r.Int}, true
	case ast.OpMultiply:
		return ast.Literal{Kind: ast.LiteralInt, Int: l.Int * r.Int}, true
	case ast.OpDivide:
		if r.Int == 0 {
			return ast.Literal{}, false
		}
		return ast.Literal{Kind: ast.LiteralInt, Int: l.Int / r.Int}, true
	case ast.OpBitwiseOr:
		return ast.Literal{Kind: ast.LiteralInt, Int: l.Int | r.Int}, true
	case ast.OpBitwiseAnd:
		return ast.Literal{Kind: ast.LiteralInt, Int: l.Int & r.Int}, true
	case ast.OpXor:
		return ast.Literal{Kind: ast.LiteralInt, Int: l.Int ^ r.Int}, true
	case ast.OpLeftShift:
		return ast.Literal{Kind: ast.LiteralInt, Int: l.Int << uint(r.Int)}, true
	case ast.OpRightShift:
		return ast.Literal{Kind: ast.LiteralInt, Int: l.Int >> uint(r.Int)}, true
	default:
		return ast.Literal{}, false
	}
}

func (a *Analyzer) err(kind diag.Kind, loc ast.Location, format string, args ...any) {
	a.log.Add(diag.New(kind, fmt.Sprintf(format, args...), loc.File, 0, 0))
}
