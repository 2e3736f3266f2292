package printer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"exalt/internal/ast"
	"exalt/internal/decompiler/ir"
)

// Print renders script as source text, with includes (if any) emitted
// as a leading block of `include "...";` lines ahead of everything
// else. Global var declarations print first, each on its own line,
// followed by a blank line, then every function/callback separated by
// a blank line.
func Print(script *ir.Script, transform *IrTransform, includes []string) string {
	var sb strings.Builder
	for _, inc := range includes {
		fmt.Fprintf(&sb, "include %s;\n", inc)
	}
	if len(includes) > 0 {
		sb.WriteByte('\n')
	}

	var vars, funcs []ir.Decl
	for _, d := range script.Decls {
		if _, ok := d.(ir.GlobalVarDecl); ok {
			vars = append(vars, d)
		} else {
			funcs = append(funcs, d)
		}
	}
	for _, d := range vars {
		printDecl(&sb, d, transform)
		sb.WriteByte('\n')
	}
	if len(vars) > 0 {
		sb.WriteByte('\n')
	}
	for _, d := range funcs {
		printDecl(&sb, d, transform)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func printDecl(sb *strings.Builder, decl ir.Decl, transform *IrTransform) {
	switch d := decl.(type) {
	case ir.CallbackDecl:
		for _, ann := range d.Annotations {
			printAnnotation(sb, ann)
			sb.WriteByte('\n')
		}
		sb.WriteString("callback[")
		if name, ok := transform.transformEvent(d.Event); ok {
			sb.WriteString(name)
		} else {
			fmt.Fprintf(sb, "0x%X", d.Event)
		}
		sb.WriteString("](")
		for i, arg := range d.Args {
			printLiteral(sb, arg, transform)
			if i+1 < len(d.Args) {
				sb.WriteString(", ")
			}
		}
		sb.WriteString(") ")
		printStmt(sb, d.Body, 0, transform)

	case ir.FunctionDecl:
		for _, ann := range d.Annotations {
			printAnnotation(sb, ann)
			sb.WriteByte('\n')
		}
		fmt.Fprintf(sb, "def %s(", transform.transformFunctionName(d.Name))
		for i := 0; i < d.Arity; i++ {
			printVar(sb, ir.FrameId{Index: i})
			if i+1 < d.Arity {
				sb.WriteString(", ")
			}
		}
		sb.WriteString(") ")
		printStmt(sb, d.Body, 0, transform)

	case ir.GlobalVarDecl:
		sb.WriteString("let ")
		printVar(sb, ir.FrameId{Index: d.Base, Global: true})
		if d.Count != nil {
			fmt.Fprintf(sb, "[%d]", *d.Count)
		}
		sb.WriteByte(';')
	}
}

func printAnnotation(sb *strings.Builder, ann ir.Annotation) {
	sb.WriteByte('@')
	switch a := ann.(type) {
	case ir.NoDefaultReturnAnnotation:
		sb.WriteString("NoDefaultReturn")
	case ir.PrefixAnnotation:
		fmt.Fprintf(sb, "Prefix(%s)", joinHex(a.Bytes))
	case ir.SuffixAnnotation:
		fmt.Fprintf(sb, "Suffix(%s)", joinHex(a.Bytes))
	case ir.UnknownAnnotation:
		fmt.Fprintf(sb, "Unknown(0x%X)", a.Value)
	}
}

func joinHex(bs []byte) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = fmt.Sprintf("0x%X", b)
	}
	return strings.Join(parts, ", ")
}

func addIndent(sb *strings.Builder, indent int) {
	for i := 0; i < indent; i++ {
		sb.WriteString("    ")
	}
}

func printStmt(sb *strings.Builder, stmt ir.Stmt, indent int, transform *IrTransform) {
	switch s := stmt.(type) {
	case ir.AssignStmt:
		printRef(sb, s.Left, indent, transform)
		fmt.Fprintf(sb, " %s ", s.Op)
		printExpr(sb, s.Right, indent, transform)
		sb.WriteByte(';')

	case ir.BlockStmt:
		if len(s.Stmts) == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteString("{\n")
		for _, line := range s.Stmts {
			addIndent(sb, indent+1)
			printStmt(sb, line, indent+1, transform)
			sb.WriteByte('\n')
		}
		addIndent(sb, indent)
		sb.WriteByte('}')

	case ir.BreakStmt:
		sb.WriteString("break;")
	case ir.ContinueStmt:
		sb.WriteString("continue;")

	case ir.ExprStmt:
		printExpr(sb, s.Expr, indent, transform)
		sb.WriteByte(';')

	case ir.ForStmt:
		sb.WriteString("for (")
		printStmt(sb, s.Init, indent, transform)
		sb.WriteByte(' ')
		printExpr(sb, s.Check, indent, transform)
		sb.WriteString("; ")
		printForStep(sb, s.Step, indent, transform)
		sb.WriteString(") ")
		printStmt(sb, s.Body, indent, transform)

	case ir.GotoStmt:
		fmt.Fprintf(sb, "goto %s;", s.Label)

	case ir.IfStmt:
		sb.WriteString("if (")
		printExpr(sb, s.Check, indent, transform)
		sb.WriteString(") ")
		printStmt(sb, s.Then, indent, transform)
		if s.Else != nil {
			sb.WriteString(" else ")
			printStmt(sb, s.Else, indent, transform)
		}

	case ir.LabelStmt:
		fmt.Fprintf(sb, "label %s;", s.Label)

	case ir.MatchStmt:
		sb.WriteString("match (")
		printExpr(sb, s.Switch, indent, transform)
		sb.WriteString(") {\n")
		for _, c := range s.Cases {
			addIndent(sb, indent+1)
			for i, check := range c.Conditions {
				printExpr(sb, check, indent, transform)
				if i+1 < len(c.Conditions) {
					sb.WriteString(", ")
				}
			}
			sb.WriteString(" -> ")
			printStmt(sb, c.Body, indent+1, transform)
			sb.WriteByte('\n')
		}
		if s.Default != nil {
			addIndent(sb, indent+1)
			sb.WriteString("else -> ")
			printStmt(sb, s.Default, indent+1, transform)
			sb.WriteByte('\n')
		}
		addIndent(sb, indent)
		sb.WriteByte('}')

	case ir.PrintfStmt:
		sb.WriteString("printf(")
		for i, a := range s.Args {
			printExpr(sb, a, indent, transform)
			if i+1 < len(s.Args) {
				sb.WriteString(", ")
			}
		}
		sb.WriteString(");")

	case ir.ReturnStmt:
		if s.Value != nil {
			sb.WriteString("return ")
			printExpr(sb, s.Value, indent, transform)
			sb.WriteByte(';')
		} else {
			sb.WriteString("return;")
		}

	case ir.VarDeclStmt:
		sb.WriteString("let ")
		printVar(sb, ir.FrameId{Index: s.Frame})
		if s.Count != nil {
			fmt.Fprintf(sb, "[%d]", *s.Count)
		}
		sb.WriteByte(';')

	case ir.WhileStmt:
		sb.WriteString("while (")
		printExpr(sb, s.Check, indent, transform)
		sb.WriteString(") ")
		printStmt(sb, s.Body, indent, transform)

	case ir.YieldStmt:
		sb.WriteString("yield;")
	}
}

// printForStep prints a for loop's step part, which the code generator
// only ever produces as a bare assignment or expression statement.
func printForStep(sb *strings.Builder, step ir.Stmt, indent int, transform *IrTransform) {
	switch s := step.(type) {
	case ir.AssignStmt:
		printRef(sb, s.Left, indent, transform)
		fmt.Fprintf(sb, " %s ", s.Op)
		printExpr(sb, s.Right, indent, transform)
	case ir.ExprStmt:
		printExpr(sb, s.Expr, indent, transform)
	default:
		sb.WriteString("<invalid for-step>")
	}
}

func printExpr(sb *strings.Builder, expr ir.Expr, indent int, transform *IrTransform) {
	switch e := expr.(type) {
	case ir.LiteralExpr:
		printLiteral(sb, e.Value, transform)

	case ir.UnaryExpr:
		fmt.Fprintf(sb, "%s", e.Op)
		printExpr(sb, e.Operand, indent, transform)

	case ir.BinaryExpr:
		printExpr(sb, e.Left, indent, transform)
		fmt.Fprintf(sb, " %s ", e.Op)
		printExpr(sb, e.Right, indent, transform)

	case ir.CallExpr:
		sb.WriteString(transform.transformFunctionName(e.Name))
		sb.WriteByte('(')
		for i, a := range e.Args {
			printExpr(sb, a, indent, transform)
			if i+1 < len(e.Args) {
				sb.WriteString(", ")
			}
		}
		sb.WriteByte(')')

	case ir.RefExpr:
		printRef(sb, e.Ref, indent, transform)

	case ir.AddrExpr:
		sb.WriteByte('&')
		printRef(sb, e.Ref, indent, transform)

	case ir.IncExpr:
		if e.Notation == ast.Prefix {
			fmt.Fprintf(sb, "%s", e.Op)
		}
		printRef(sb, e.Ref, indent, transform)
		if e.Notation == ast.Postfix {
			fmt.Fprintf(sb, "%s", e.Op)
		}

	case ir.GroupedExpr:
		sb.WriteByte('(')
		printExpr(sb, e.Inner, indent, transform)
		sb.WriteByte(')')

	case ir.StaticArrayInitExpr:
		sb.WriteByte('[')
		if len(e.Elements) < 5 {
			for i, el := range e.Elements {
				printExpr(sb, el, indent, transform)
				if i+1 < len(e.Elements) {
					sb.WriteString(", ")
				}
			}
		} else {
			for i := 0; i < len(e.Elements); i += 4 {
				sb.WriteByte('\n')
				addIndent(sb, indent+1)
				end := i + 4
				if end > len(e.Elements) {
					end = len(e.Elements)
				}
				for j := i; j < end; j++ {
					printExpr(sb, e.Elements[j], indent+1, transform)
					sb.WriteString(", ")
				}
			}
			sb.WriteByte('\n')
			addIndent(sb, indent)
		}
		sb.WriteByte(']')
	}
}

func printLiteral(sb *strings.Builder, lit ir.Literal, transform *IrTransform) {
	switch l := lit.(type) {
	case ir.IntLiteral:
		fmt.Fprintf(sb, "%d", l.Value)
	case ir.FloatLiteral:
		sb.WriteString(formatFloat(l.Value))
	case ir.StrLiteral:
		if v, ok := transform.transformString(l.Value); ok {
			sb.WriteString(v) // TODO: unescape?
		} else {
			fmt.Fprintf(sb, "%q", l.Value) // TODO: unescape?
		}
	}
}

func formatFloat(v float32) string {
	if math.Trunc(float64(v)) == float64(v) {
		return strconv.FormatFloat(float64(v), 'f', 1, 32)
	}
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

func printRef(sb *strings.Builder, ref ir.Reference, indent int, transform *IrTransform) {
	switch r := ref.(type) {
	case ir.VarReference:
		printVar(sb, r.Frame)
	case ir.IndexReference:
		printVar(sb, r.Frame)
		sb.WriteByte('[')
		printExpr(sb, r.Index, indent, transform)
		sb.WriteByte(']')
	case ir.DereferenceReference:
		sb.WriteByte('*')
		printVar(sb, r.Frame)
		if !isUselessIndex(r.Index) {
			sb.WriteByte('[')
			printExpr(sb, r.Index, indent, transform)
			sb.WriteByte(']')
		}
	}
}

func isUselessIndex(index ir.Expr) bool {
	lit, ok := index.(ir.LiteralExpr)
	if !ok {
		return false
	}
	v, ok := lit.Value.(ir.IntLiteral)
	return ok && v.Value == 0
}

func printVar(sb *strings.Builder, frame ir.FrameId) {
	if frame.Global {
		fmt.Fprintf(sb, "g_v%d", frame.Index)
	} else {
		fmt.Fprintf(sb, "v%d", frame.Index)
	}
}
