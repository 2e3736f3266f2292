package semantic

import (
	"fmt"

	"exalt/internal/ast"
	"exalt/internal/diag"
	"exalt/internal/sem"
)

// funcCtx carries the per-function state needed while lowering a body:
// the lexical scope chain, the loop-nesting depth (for break/continue
// validity), and the labels seen so far (gotos may reference labels
// not yet walked, so they resolve against one shared table per
// function rather than per scope).
type funcCtx struct {
	a      *Analyzer
	scope  *scope
	loop   loopContext
	labels map[string]*sem.LabelSymbol
}

func (a *Analyzer) newFuncCtx() *funcCtx {
	return &funcCtx{a: a, scope: newScope(nil), labels: make(map[string]*sem.LabelSymbol)}
}

func (c *funcCtx) label(name string) *sem.LabelSymbol {
	if l, ok := c.labels[name]; ok {
		return l
	}
	l := &sem.LabelSymbol{Name: name}
	c.labels[name] = l
	return l
}

func (a *Analyzer) lowerFunction(d *ast.FunctionDecl) *sem.FunctionDecl {
	ctx := a.newFuncCtx()
	params := make([]*sem.VarSymbol, len(d.Parameters))
	for i, p := range d.Parameters {
		sym := &sem.VarSymbol{Name: p.Value, FrameID: -1}
		ctx.scope.define(p.Value, sym)
		params[i] = sym
	}
	body := ctx.lowerStmt(d.Body)
	ctx.checkLabels()
	return &sem.FunctionDecl{
		Annotations: a.lowerAnnotations(d.Annotations),
		Symbol:      a.functions[d.Name.Value],
		Parameters:  params,
		Body:        body,
	}
}

func (a *Analyzer) lowerCallback(d *ast.CallbackDecl) *sem.CallbackDecl {
	ctx := a.newFuncCtx()
	eventType, ok := a.foldConst(d.EventType)
	if !ok || eventType.Kind != ast.LiteralInt {
		a.err(diag.KindExpectedConstExpr, d.EventType.ExprLocation(), "callback event type must be a constant integer")
	}
	args := make([]ast.Literal, 0, len(d.Args))
	for _, arg := range d.Args {
		v, ok := a.foldConst(arg)
		if !ok {
			a.err(diag.KindExpectedConstExpr, arg.ExprLocation(), "callback argument must be a compile-time constant")
			continue
		}
		args = append(args, v)
	}
	body := ctx.lowerStmt(d.Body)
	ctx.checkLabels()
	return &sem.CallbackDecl{
		Annotations: a.lowerAnnotations(d.Annotations),
		EventType:   int(eventType.Int),
		Args:        args,
		Body:        body,
	}
}

// checkLabels reports any goto target never defined by a Label
// statement in the same function body.
func (c *funcCtx) checkLabels() {
	for name, l := range c.labels {
		if !l.Resolved {
			c.a.log.Add(diag.New(diag.KindUnresolvedLabel, fmt.Sprintf("label %q is never defined", name), "", 0, 0))
		}
	}
}

func (a *Analyzer) lowerAnnotations(anns []ast.Annotation) []sem.Annotation {
	out := make([]sem.Annotation, 0, len(anns))
	for _, ann := range anns {
		switch ann.Name.Value {
		case "NoDefaultReturn":
			out = append(out, sem.NoDefaultReturnAnnotation{})
		case "Prefix":
			out = append(out, sem.PrefixAnnotation{Bytes: annotationBytes(a, ann)})
		case "Suffix":
			out = append(out, sem.SuffixAnnotation{Bytes: annotationBytes(a, ann)})
		case "Unknown":
			v := 0
			if len(ann.Args) == 1 {
				if lit, ok := a.foldConst(ann.Args[0]); ok && lit.Kind == ast.LiteralInt {
					v = int(lit.Int)
				}
			}
			out = append(out, sem.UnknownAnnotation{Value: v})
		default:
			a.err(diag.KindUndefinedAnnotation, ann.Location, "unrecognized annotation %q", ann.Name.Value)
		}
	}
	return out
}

func annotationBytes(a *Analyzer, ann ast.Annotation) []byte {
	var out []byte
	for _, arg := range ann.Args {
		lit, ok := a.foldConst(arg)
		if !ok || lit.Kind != ast.LiteralInt {
			a.err(diag.KindExpectedConstExpr, arg.ExprLocation(), "%s annotation arguments must be constant bytes", ann.Name.Value)
			continue
		}
		out = append(out, byte(lit.Int))
	}
	return out
}

func (c *funcCtx) lowerStmt(s ast.Stmt) sem.Stmt {
	switch stmt := s.(type) {
	case *ast.AssignmentStmt:
		return sem.AssignmentStmt{Left: c.lowerRef(stmt.Left), Op: stmt.Op, Right: c.lowerExpr(stmt.Right)}
	case *ast.BlockStmt:
		inner := newScope(c.scope)
		saved := c.scope
		c.scope = inner
		out := make([]sem.Stmt, len(stmt.Stmts))
		for i, s := range stmt.Stmts {
			out[i] = c.lowerStmt(s)
		}
		c.scope = saved
		return sem.BlockStmt{Stmts: out}
	case *ast.BreakStmt:
		if !c.loop.inLoop() {
			c.a.err(diag.KindBadBreak, stmt.Location, "break outside of a loop or match")
		}
		return sem.BreakStmt{}
	case *ast.ContinueStmt:
		if !c.loop.inLoop() {
			c.a.err(diag.KindBadContinue, stmt.Location, "continue outside of a loop")
		}
		return sem.ContinueStmt{}
	case *ast.ExprStmt:
		return sem.ExprStmt{Expr: c.lowerExpr(stmt.Expr)}
	case *ast.ForStmt:
		init := c.lowerOptStmt(stmt.Init)
		check := c.lowerExpr(stmt.Check)
		step := c.lowerOptStmt(stmt.Step)
		c.loop.enter()
		body := c.lowerStmt(stmt.Body)
		c.loop.exit()
		return sem.ForStmt{Init: init, Check: check, Step: step, Body: body}
	case *ast.GotoStmt:
		return sem.GotoStmt{Symbol: c.label(stmt.Target.Value)}
	case *ast.IfStmt:
		cond := c.lowerExpr(stmt.Condition)
		then := c.lowerStmt(stmt.Then)
		var els sem.Stmt
		if stmt.Else != nil {
			els = c.lowerStmt(stmt.Else)
		}
		return sem.IfStmt{Condition: cond, Then: then, Else: els}
	case *ast.LabelStmt:
		l := c.label(stmt.Name.Value)
		l.Resolved = true
		return sem.LabelStmt{Symbol: l}
	case *ast.MatchStmt:
		sw := c.lowerExpr(stmt.Switch)
		c.loop.enter() // break is legal inside match bodies
		cases := make([]sem.Case, len(stmt.Cases))
		for i, cs := range stmt.Cases {
			conds := make([]sem.Expr, len(cs.Conditions))
			for j, cond := range cs.Conditions {
				conds[j] = c.lowerExpr(cond)
			}
			cases[i] = sem.Case{Conditions: conds, Body: c.lowerStmt(cs.Body)}
		}
		var def sem.Stmt
		if stmt.Default != nil {
			def = c.lowerStmt(stmt.Default)
		}
		c.loop.exit()
		return sem.MatchStmt{Switch: sw, Cases: cases, Default: def}
	case *ast.PrintfStmt:
		args := make([]sem.Expr, len(stmt.Args))
		for i, arg := range stmt.Args {
			args[i] = c.lowerExpr(arg)
		}
		return sem.PrintfStmt{Args: args}
	case *ast.ReturnStmt:
		var v sem.Expr
		if stmt.Value != nil {
			v = c.lowerExpr(stmt.Value)
		}
		return sem.ReturnStmt{Value: v}
	case *ast.VarDeclStmt:
		sym := &sem.VarSymbol{Name: stmt.Name.Value, FrameID: -1}
		c.scope.define(stmt.Name.Value, sym)
		out := sem.VarDeclStmt{Symbol: sym}
		if stmt.Init != nil {
			sym.Assignments++
			return sem.BlockStmt{Stmts: []sem.Stmt{
				out,
				sem.AssignmentStmt{Left: sem.VarRef{Symbol: sym}, Op: ast.OpAssign, Right: c.lowerExpr(stmt.Init)},
			}}
		}
		return out
	case *ast.WhileStmt:
		cond := c.lowerExpr(stmt.Condition)
		c.loop.enter()
		body := c.lowerStmt(stmt.Body)
		c.loop.exit()
		return sem.WhileStmt{Condition: cond, Body: body}
	case *ast.YieldStmt:
		return sem.YieldStmt{}
	default:
		panic(fmt.Sprintf("semantic: unhandled statement %T", s))
	}
}

func (c *funcCtx) lowerOptStmt(s ast.Stmt) sem.Stmt {
	if s == nil {
		return nil
	}
	return c.lowerStmt(s)
}

func (c *funcCtx) resolveVar(ident ast.Identifier) *sem.VarSymbol {
	if sym, ok := c.scope.lookup(ident.Value); ok {
		return sym
	}
	if sym, ok := c.a.globals[ident.Value]; ok {
		return sym
	}
	c.a.err(diag.KindUndefinedVariable, ident.Location, "undefined variable %q", ident.Value)
	sym := &sem.VarSymbol{Name: ident.Value, FrameID: -1}
	c.scope.define(ident.Value, sym)
	return sym
}

func (c *funcCtx) lowerRef(r ast.Ref) sem.Ref {
	switch ref := r.(type) {
	case *ast.VarRef:
		sym := c.resolveVar(ref.Ident)
		sym.Assignments++
		return sem.VarRef{Symbol: sym}
	case *ast.IndexRef:
		sym := c.resolveVar(ref.Ident)
		sym.Array = true
		sym.Assignments++
		return sem.IndexRef{Symbol: sym, Index: c.lowerExpr(ref.Index)}
	case *ast.DereferenceRef:
		sym := c.resolveVar(ref.Ident)
		sym.Assignments++
		var offset sem.Expr
		if ref.Offset != nil {
			offset = c.lowerExpr(ref.Offset)
		}
		return sem.DereferenceRef{Symbol: sym, Offset: offset}
	default:
		panic(fmt.Sprintf("semantic: unhandled ref %T", r))
	}
}

func (c *funcCtx) lowerExpr(e ast.Expr) sem.Expr {
	switch expr := e.(type) {
	case *ast.ArrayExpr:
		if expr.IsCount {
			lit, ok := c.a.foldConst(expr.Elements[0])
			if !ok {
				c.a.err(diag.KindExpectedConstExpr, expr.Elements[0].ExprLocation(), "array length must be a compile-time constant")
				return sem.ArrayExpr{Init: sem.EmptyArrayInit{}}
			}
			if lit.Int < 0 {
				c.a.err(diag.KindNegativeArrayLength, expr.Elements[0].ExprLocation(), "array length %d is negative", lit.Int)
				return sem.ArrayExpr{Init: sem.EmptyArrayInit{}}
			}
			return sem.ArrayExpr{Init: sem.EmptyArrayInit{Size: int(lit.Int)}}
		}
		elems := make([]sem.Expr, len(expr.Elements))
		for i, el := range expr.Elements {
			elems[i] = c.lowerExpr(el)
		}
		return sem.ArrayExpr{Init: sem.StaticArrayInit{Elements: elems}}
	case *ast.LiteralExpr:
		return sem.LiteralExpr{Value: expr.Value}
	case *ast.EnumAccessExpr:
		enum, ok := c.a.enums[expr.Enum.Value]
		if !ok {
			c.a.err(diag.KindUndefinedEnum, expr.Location, "undefined enum %q", expr.Enum.Value)
			return sem.LiteralExpr{Value: ast.Literal{Kind: ast.LiteralInt}}
		}
		variant, ok := enum.Variants[expr.Variant.Value]
		if !ok {
			c.a.err(diag.KindUndefinedVariant, expr.Location, "enum %q has no variant %q", expr.Enum.Value, expr.Variant.Value)
			return sem.LiteralExpr{Value: ast.Literal{Kind: ast.LiteralInt}}
		}
		return sem.LiteralExpr{Value: variant.Value}
	case *ast.UnaryExpr:
		return sem.UnaryExpr{Op: expr.Op, Operand: c.lowerExpr(expr.Operand)}
	case *ast.BinaryExpr:
		return sem.BinaryExpr{Left: c.lowerExpr(expr.Left), Op: expr.Op, Right: c.lowerExpr(expr.Right)}
	case *ast.FunctionCallExpr:
		sym, ok := c.a.functions[expr.Callee.Value]
		if !ok {
			if aliased, ok2 := c.a.aliases[expr.Callee.Value]; ok2 {
				sym = c.a.functions[aliased]
			}
		}
		if sym == nil {
			c.a.err(diag.KindUndefinedVariable, expr.Location, "undefined function %q", expr.Callee.Value)
			sym = &sem.FunctionSymbol{Name: expr.Callee.Value, Arity: len(expr.Args)}
		} else if sym.Arity != len(expr.Args) {
			c.a.err(diag.KindBadArgCount, expr.Location, "function %q expects %d arguments, got %d", sym.Name, sym.Arity, len(expr.Args))
		}
		args := make([]sem.Expr, len(expr.Args))
		for i, arg := range expr.Args {
			args[i] = c.lowerExpr(arg)
		}
		return sem.FunctionCallExpr{Symbol: sym, Args: args}
	case *ast.RefExpr:
		if v, ok := expr.Ref.(*ast.VarRef); ok {
			if cs, ok := c.a.consts[v.Ident.Value]; ok {
				return sem.LiteralExpr{Value: cs.Value}
			}
		}
		return sem.RefExpr{Ref: c.lowerReadRef(expr.Ref)}
	case *ast.GroupedExpr:
		return sem.GroupedExpr{Inner: c.lowerExpr(expr.Inner)}
	case *ast.IncrementExpr:
		return sem.IncrementExpr{Ref: c.lowerRef(expr.Ref), Op: expr.Op, Notation: expr.Notation}
	case *ast.AddressOfExpr:
		return sem.AddressOfExpr{Ref: c.lowerRef(expr.Ref)}
	default:
		panic(fmt.Sprintf("semantic: unhandled expression %T", e))
	}
}

// lowerReadRef resolves a ref used in read position, without bumping
// its assignment counter (unlike lowerRef, used for write positions).
func (c *funcCtx) lowerReadRef(r ast.Ref) sem.Ref {
	switch ref := r.(type) {
	case *ast.VarRef:
		return sem.VarRef{Symbol: c.resolveVar(ref.Ident)}
	case *ast.IndexRef:
		return sem.IndexRef{Symbol: c.resolveVar(ref.Ident), Index: c.lowerExpr(ref.Index)}
	case *ast.DereferenceRef:
		sym := c.resolveVar(ref.Ident)
		var offset sem.Expr
		if ref.Offset != nil {
			offset = c.lowerExpr(ref.Offset)
		}
		return sem.DereferenceRef{Symbol: sym, Offset: offset}
	default:
		panic(fmt.Sprintf("semantic: unhandled ref %T", r))
	}
}
