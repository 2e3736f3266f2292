package printer

import (
	"strings"
	"testing"

	"exalt/internal/ast"
	"exalt/internal/decompiler/ir"
)

func TestPrintFunctionDecl(t *testing.T) {
	decl := ir.FunctionDecl{
		Name:  "DoThing",
		Arity: 1,
		Body: ir.BlockStmt{Stmts: []ir.Stmt{
			ir.AssignStmt{
				Op:   ast.OpAssign,
				Left: ir.VarReference{Frame: ir.FrameId{Index: 1}},
				Right: ir.BinaryExpr{
					Op:   ast.OpAdd,
					Left: ir.RefExpr{Ref: ir.VarReference{Frame: ir.FrameId{Index: 0}}},
					Right: ir.LiteralExpr{Value: ir.IntLiteral{Value: 1}},
				},
			},
			ir.ReturnStmt{Value: ir.RefExpr{Ref: ir.VarReference{Frame: ir.FrameId{Index: 1}}}},
		}},
	}
	out := Print(&ir.Script{Decls: []ir.Decl{decl}}, nil, nil)

	want := "def DoThing(v0) {\n    v1 = v0 + 1;\n    return v1;\n}\n\n"
	if out != want {
		t.Errorf("got:\n%q\nwant:\n%q", out, want)
	}
}

func TestPrintGlobalVarDeclBeforeFunctions(t *testing.T) {
	script := &ir.Script{Decls: []ir.Decl{
		ir.GlobalVarDecl{Base: 0},
		ir.FunctionDecl{Name: "Main", Body: ir.BlockStmt{}},
	}}
	out := Print(script, nil, nil)
	if !strings.HasPrefix(out, "let g_v0;\n\n") {
		t.Errorf("expected global var decl to print first with a trailing blank line, got %q", out)
	}
}

func TestPrintCallbackUsesEventHexWithoutTransform(t *testing.T) {
	decl := ir.CallbackDecl{Event: 0x14, Body: ir.BlockStmt{}}
	out := Print(&ir.Script{Decls: []ir.Decl{decl}}, nil, nil)
	if !strings.Contains(out, "callback[0x14]()") {
		t.Errorf("expected raw hex event id, got %q", out)
	}
}

func TestPrintCallbackUsesTransformedEventName(t *testing.T) {
	decl := ir.CallbackDecl{Event: 0x14, Body: ir.BlockStmt{}}
	transform := &IrTransform{Events: map[byte]string{0x14: "OnTurnStart"}}
	out := Print(&ir.Script{Decls: []ir.Decl{decl}}, transform, nil)
	if !strings.Contains(out, "callback[OnTurnStart]()") {
		t.Errorf("expected transformed event name, got %q", out)
	}
}

func TestPrintDereferenceOmitsZeroIndex(t *testing.T) {
	out := Print(&ir.Script{Decls: []ir.Decl{ir.FunctionDecl{Name: "F", Body: ir.ExprStmt{Expr: ir.RefExpr{
		Ref: ir.DereferenceReference{Frame: ir.FrameId{Index: 2}, Index: ir.LiteralExpr{Value: ir.IntLiteral{Value: 0}}},
	}}}}}, nil, nil)
	if !strings.Contains(out, "*v2;") {
		t.Errorf("expected useless zero index to be omitted, got %q", out)
	}

	out = Print(&ir.Script{Decls: []ir.Decl{ir.FunctionDecl{Name: "F", Body: ir.ExprStmt{Expr: ir.RefExpr{
		Ref: ir.DereferenceReference{Frame: ir.FrameId{Index: 2}, Index: ir.LiteralExpr{Value: ir.IntLiteral{Value: 3}}},
	}}}}}, nil, nil)
	if !strings.Contains(out, "*v2[3];") {
		t.Errorf("expected non-zero index to print, got %q", out)
	}
}

func TestPrintStaticArrayInitWraps(t *testing.T) {
	elems := make([]ir.Expr, 6)
	for i := range elems {
		elems[i] = ir.LiteralExpr{Value: ir.IntLiteral{Value: int32(i)}}
	}
	out := Print(&ir.Script{Decls: []ir.Decl{ir.FunctionDecl{Name: "F", Body: ir.ExprStmt{
		Expr: ir.StaticArrayInitExpr{Elements: elems},
	}}}}, nil, nil)
	if !strings.Contains(out, "[\n") {
		t.Errorf("expected a 6-element array init to wrap onto its own lines, got %q", out)
	}
}

func TestPrintFloatLiteralAlwaysShowsDecimal(t *testing.T) {
	out := Print(&ir.Script{Decls: []ir.Decl{ir.FunctionDecl{Name: "F", Body: ir.ExprStmt{
		Expr: ir.LiteralExpr{Value: ir.FloatLiteral{Value: 3}},
	}}}}, nil, nil)
	if !strings.Contains(out, "3.0;") {
		t.Errorf("expected whole-number float to print with a trailing .0, got %q", out)
	}
}

func TestPrintStringLiteralQuoted(t *testing.T) {
	out := Print(&ir.Script{Decls: []ir.Decl{ir.FunctionDecl{Name: "F", Body: ir.ExprStmt{
		Expr: ir.LiteralExpr{Value: ir.StrLiteral{Value: "hi"}},
	}}}}, nil, nil)
	if !strings.Contains(out, `"hi";`) {
		t.Errorf("expected untransformed string literal to print quoted, got %q", out)
	}
}

func TestPrintAnnotations(t *testing.T) {
	decl := ir.AppendAnnotation(ir.FunctionDecl{Name: "F", Body: ir.BlockStmt{}}, ir.NoDefaultReturnAnnotation{})
	out := Print(&ir.Script{Decls: []ir.Decl{decl}}, nil, nil)
	if !strings.HasPrefix(out, "@NoDefaultReturn\n") {
		t.Errorf("expected annotation line ahead of the declaration, got %q", out)
	}
}

func TestPrintIncludes(t *testing.T) {
	out := Print(&ir.Script{}, nil, []string{"common"})
	if !strings.HasPrefix(out, "include common;\n\n") {
		t.Errorf("expected an include line followed by a blank line, got %q", out)
	}
}
