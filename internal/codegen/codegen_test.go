package codegen

import (
	"testing"

	"exalt/internal/ast"
	"exalt/internal/container"
	"exalt/internal/diag"
	"exalt/internal/opcode"
	"exalt/internal/sem"
)

func assertCode(t *testing.T, got, want []opcode.Opcode) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("code = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("code[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGenerateFunctionWithExplicitReturn(t *testing.T) {
	fnSym := &sem.FunctionSymbol{Name: "Main", Arity: 0}
	decl := &sem.FunctionDecl{
		Symbol: fnSym,
		Body: sem.ReturnStmt{
			Value: sem.LiteralExpr{Value: ast.Literal{Kind: ast.LiteralInt, Int: 42}},
		},
	}
	script := &sem.Script{Decls: []sem.Decl{decl}}

	gen := NewGenerator(&diag.CompilerLog{})
	out := gen.Generate(script)

	if len(out.Functions) != 1 {
		t.Fatalf("Functions = %d, want 1", len(out.Functions))
	}
	fn := out.Functions[0]
	if fn.Name == nil || *fn.Name != "Main" {
		t.Errorf("Name = %v, want Main", fn.Name)
	}
	// a default trailing return is always appended, even after an
	// explicit one, unless NoDefaultReturnAnnotation is present.
	assertCode(t, fn.Code, []opcode.Opcode{
		{Kind: opcode.IntLoad, Int: 42},
		{Kind: opcode.Return},
		{Kind: opcode.ReturnFalse},
	})
}

func TestGenerateFunctionWithNoDefaultReturnAnnotation(t *testing.T) {
	fnSym := &sem.FunctionSymbol{Name: "NoRet", Arity: 0}
	decl := &sem.FunctionDecl{
		Symbol:      fnSym,
		Annotations: []sem.Annotation{sem.NoDefaultReturnAnnotation{}},
		Body:        sem.ReturnStmt{Value: sem.LiteralExpr{Value: ast.Literal{Kind: ast.LiteralInt, Int: 1}}},
	}
	script := &sem.Script{Decls: []sem.Decl{decl}}

	gen := NewGenerator(&diag.CompilerLog{})
	out := gen.Generate(script)

	fn := out.Functions[0]
	assertCode(t, fn.Code, []opcode.Opcode{{Kind: opcode.ReturnTrue}})
}

func TestGenerateCallbackLowersArgsAndEventType(t *testing.T) {
	decl := &sem.CallbackDecl{
		EventType: 5,
		Args: []ast.Literal{
			{Kind: ast.LiteralInt, Int: 3},
			{Kind: ast.LiteralStr, Str: "hi"},
		},
		Body: sem.BlockStmt{},
	}
	script := &sem.Script{Decls: []sem.Decl{decl}}

	gen := NewGenerator(&diag.CompilerLog{})
	out := gen.Generate(script)

	fn := out.Functions[0]
	if fn.FunctionType != 5 {
		t.Errorf("FunctionType = %d, want 5", fn.FunctionType)
	}
	if len(fn.Args) != 2 {
		t.Fatalf("Args = %d, want 2", len(fn.Args))
	}
	if fn.Args[0].Kind != container.ArgInt || fn.Args[0].Int != 3 {
		t.Errorf("Args[0] = %+v, want Int=3", fn.Args[0])
	}
	if fn.Args[1].Kind != container.ArgStr || fn.Args[1].Str != "hi" {
		t.Errorf("Args[1] = %+v, want Str=hi", fn.Args[1])
	}
	assertCode(t, fn.Code, []opcode.Opcode{{Kind: opcode.ReturnFalse}})
}

func TestGenerateCallByIdUsesDeclarationOrderTable(t *testing.T) {
	firstSym := &sem.FunctionSymbol{Name: "First", Arity: 0}
	secondSym := &sem.FunctionSymbol{Name: "Second", Arity: 0}
	callFirst := &sem.FunctionDecl{
		Symbol: secondSym,
		Body: sem.ExprStmt{Expr: sem.FunctionCallExpr{Symbol: firstSym}},
	}
	script := &sem.Script{Decls: []sem.Decl{
		&sem.FunctionDecl{Symbol: firstSym, Body: sem.BlockStmt{}},
		callFirst,
	}}

	gen := NewGenerator(&diag.CompilerLog{})
	out := gen.Generate(script)

	second := out.Functions[1]
	found := false
	for _, op := range second.Code {
		if op.Kind == opcode.CallById {
			found = true
			if op.CallID != 0 {
				t.Errorf("CallID = %d, want 0 (First is declared first)", op.CallID)
			}
		}
	}
	if !found {
		t.Fatal("no CallById opcode emitted for a forward-declared function")
	}
}

func TestGenerateParametersReserveFrameSlotsAndArity(t *testing.T) {
	paramA := &sem.VarSymbol{Name: "a"}
	paramB := &sem.VarSymbol{Name: "b"}
	decl := &sem.FunctionDecl{
		Symbol:     &sem.FunctionSymbol{Name: "Two", Arity: 2},
		Parameters: []*sem.VarSymbol{paramA, paramB},
		Body:       sem.BlockStmt{},
	}
	script := &sem.Script{Decls: []sem.Decl{decl}}

	gen := NewGenerator(&diag.CompilerLog{})
	out := gen.Generate(script)

	fn := out.Functions[0]
	if fn.Arity != 2 {
		t.Errorf("Arity = %d, want 2", fn.Arity)
	}
	if fn.FrameSize != 2 {
		t.Errorf("FrameSize = %d, want 2", fn.FrameSize)
	}
}
