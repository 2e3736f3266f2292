package decompiler

import (
	"testing"

	"exalt/internal/ast"
	"exalt/internal/container"
	"exalt/internal/decompiler/ir"
	"exalt/internal/opcode"
)

func mustFunction(t *testing.T, code []opcode.Opcode) ir.Decl {
	t.Helper()
	name := "Main"
	fn := container.FunctionData{Name: &name, FrameSize: 4, Code: code}
	script := &container.Script{Functions: []container.FunctionData{fn}}
	out, err := Decompile(script, opcode.G3, false)
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	if len(out.Decls) != 1 {
		t.Fatalf("expected one decl, got %d", len(out.Decls))
	}
	return out.Decls[0]
}

func TestDecompileSimpleAssignment(t *testing.T) {
	decl := mustFunction(t, []opcode.Opcode{
		{Kind: opcode.VarAddr, FrameID: 0},
		{Kind: opcode.IntLoad, Int: 1},
		{Kind: opcode.Assign},
		{Kind: opcode.VarLoad, FrameID: 0},
		{Kind: opcode.Return},
	})

	fn, ok := decl.(ir.FunctionDecl)
	if !ok {
		t.Fatalf("expected FunctionDecl, got %T", decl)
	}
	block, ok := fn.Body.(ir.BlockStmt)
	if !ok {
		t.Fatalf("expected BlockStmt body, got %T", fn.Body)
	}
	if len(block.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %#v", len(block.Stmts), block.Stmts)
	}

	assign, ok := block.Stmts[0].(ir.AssignStmt)
	if !ok {
		t.Fatalf("expected first statement to be an assignment, got %T", block.Stmts[0])
	}
	if assign.Op != ast.OpAssign {
		t.Errorf("expected plain assignment operator, got %v", assign.Op)
	}
	lit, ok := assign.Right.(ir.LiteralExpr)
	if !ok || lit.Value.(ir.IntLiteral).Value != 1 {
		t.Errorf("expected right side to be int literal 1, got %#v", assign.Right)
	}

	ret, ok := block.Stmts[1].(ir.ReturnStmt)
	if !ok {
		t.Fatalf("expected second statement to be a return, got %T", block.Stmts[1])
	}
	if _, ok := ret.Value.(ir.RefExpr); !ok {
		t.Errorf("expected return value to be a variable reference, got %#v", ret.Value)
	}
}

func TestDecompileStripsDefaultReturn(t *testing.T) {
	decl := mustFunction(t, []opcode.Opcode{
		{Kind: opcode.ReturnFalse},
	})
	fn := decl.(ir.FunctionDecl)
	for _, ann := range fn.Annotations {
		if _, ok := ann.(ir.NoDefaultReturnAnnotation); ok {
			t.Fatalf("a trailing literal-0 return should be stripped, not annotated as missing")
		}
	}
	block := fn.Body.(ir.BlockStmt)
	if len(block.Stmts) != 0 {
		t.Errorf("expected the default return to be stripped entirely, got %#v", block.Stmts)
	}
}

func TestDecompileAnnotatesMissingDefaultReturn(t *testing.T) {
	decl := mustFunction(t, []opcode.Opcode{
		{Kind: opcode.VarLoad, FrameID: 0},
		{Kind: opcode.Return},
	})
	fn := decl.(ir.FunctionDecl)
	found := false
	for _, ann := range fn.Annotations {
		if _, ok := ann.(ir.NoDefaultReturnAnnotation); ok {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a missing trailing return to be annotated")
	}
}

func TestDecompileCallbackCarriesEventId(t *testing.T) {
	fn := container.FunctionData{FunctionType: 0x14, Code: []opcode.Opcode{{Kind: opcode.ReturnFalse}}}
	script := &container.Script{Functions: []container.FunctionData{fn}}
	out, err := Decompile(script, opcode.G3, false)
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	cb, ok := out.Decls[0].(ir.CallbackDecl)
	if !ok {
		t.Fatalf("expected CallbackDecl, got %T", out.Decls[0])
	}
	if cb.Event != 0x14 {
		t.Errorf("expected event 0x14, got 0x%X", cb.Event)
	}
}

func TestDecompileCallByIdResolvesName(t *testing.T) {
	helperName := "Helper"
	helper := container.FunctionData{Name: &helperName, Arity: 1, FrameSize: 1, Code: []opcode.Opcode{
		{Kind: opcode.VarLoad, FrameID: 0},
		{Kind: opcode.Return},
	}}
	mainName := "Main"
	main := container.FunctionData{Name: &mainName, FrameSize: 1, Code: []opcode.Opcode{
		{Kind: opcode.IntLoad, Int: 5},
		{Kind: opcode.CallById, CallID: 0},
		{Kind: opcode.Consume},
	}}
	script := &container.Script{Functions: []container.FunctionData{helper, main}}
	out, err := Decompile(script, opcode.G3, false)
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	mainFn := out.Decls[1].(ir.FunctionDecl)
	block := mainFn.Body.(ir.BlockStmt)
	exprStmt, ok := block.Stmts[0].(ir.ExprStmt)
	if !ok {
		t.Fatalf("expected an expression statement, got %T", block.Stmts[0])
	}
	call, ok := exprStmt.Expr.(ir.CallExpr)
	if !ok {
		t.Fatalf("expected a call expression, got %T", exprStmt.Expr)
	}
	if call.Name != "Helper" {
		t.Errorf("expected call to resolve to Helper by its function table name, got %q", call.Name)
	}
}

func TestDecompileFixRecoversAsIntCall(t *testing.T) {
	decl := mustFunction(t, []opcode.Opcode{
		{Kind: opcode.FloatLoad, Float: 1.5},
		{Kind: opcode.Fix},
		{Kind: opcode.Consume},
	})
	fn := decl.(ir.FunctionDecl)
	block := fn.Body.(ir.BlockStmt)
	call := block.Stmts[0].(ir.ExprStmt).Expr.(ir.CallExpr)
	if call.Name != "int" {
		t.Errorf("Fix should decompile to a call literally named \"int\", got %q", call.Name)
	}
}

func TestScanGlobalFrameSize(t *testing.T) {
	fn := container.FunctionData{Code: []opcode.Opcode{
		{Kind: opcode.GlobalVarLoad, FrameID: 3},
		{Kind: opcode.Consume},
	}}
	size := scanGlobalFrameSize(&container.Script{Functions: []container.FunctionData{fn}})
	if size != 4 {
		t.Errorf("expected global frame size 4 (highest referenced id + 1), got %d", size)
	}
}
