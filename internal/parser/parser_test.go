package parser

import (
	"testing"

	"exalt/internal/ast"
	"exalt/internal/diag"
)

func parseSource(t *testing.T, src string) (*ast.Script, *diag.CompilerLog) {
	t.Helper()
	log := &diag.CompilerLog{}
	script := Parse("test.exalt", src, log)
	return script, log
}

func requireNoErrors(t *testing.T, log *diag.CompilerLog) {
	t.Helper()
	if log.HasErrors() {
		for _, d := range log.Errors() {
			t.Errorf("unexpected error: %s", d.Error())
		}
	}
}

func TestParseEmptyFunction(t *testing.T) {
	script, log := parseSource(t, "def main() {}")
	requireNoErrors(t, log)
	if len(script.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(script.Decls))
	}
	fn, ok := script.Decls[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected FunctionDecl, got %T", script.Decls[0])
	}
	if fn.Name.Value != "main" {
		t.Errorf("expected name main, got %q", fn.Name.Value)
	}
	if len(fn.Parameters) != 0 {
		t.Errorf("expected no parameters, got %d", len(fn.Parameters))
	}
}

func TestParseFunctionParameters(t *testing.T) {
	script, log := parseSource(t, "def add(a, b) { return a + b; }")
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	if len(fn.Parameters) != 2 || fn.Parameters[0].Value != "a" || fn.Parameters[1].Value != "b" {
		t.Fatalf("unexpected parameters: %+v", fn.Parameters)
	}
	block := fn.Body.(*ast.BlockStmt)
	ret := block.Stmts[0].(*ast.ReturnStmt)
	bin := ret.Value.(*ast.BinaryExpr)
	if bin.Op != ast.OpAdd {
		t.Errorf("expected OpAdd, got %v", bin.Op)
	}
}

func TestParseConstDecl(t *testing.T) {
	script, log := parseSource(t, "const MAX = 10;")
	requireNoErrors(t, log)
	c := script.Decls[0].(*ast.ConstDecl)
	if c.Name.Value != "MAX" {
		t.Errorf("expected MAX, got %q", c.Name.Value)
	}
	lit := c.Value.(*ast.LiteralExpr)
	if lit.Value.Int != 10 {
		t.Errorf("expected 10, got %d", lit.Value.Int)
	}
}

func TestParseEnumDecl(t *testing.T) {
	script, log := parseSource(t, "enum Color { Red = 0, Green = 1, Blue = 2 }")
	requireNoErrors(t, log)
	e := script.Decls[0].(*ast.EnumDecl)
	if len(e.Variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(e.Variants))
	}
	if e.Variants[1].Name.Value != "Green" {
		t.Errorf("expected Green, got %q", e.Variants[1].Name.Value)
	}
}

func TestParseGlobalDecl(t *testing.T) {
	script, log := parseSource(t, "let counter;")
	requireNoErrors(t, log)
	g := script.Decls[0].(*ast.GlobalDecl)
	if g.Name.Value != "counter" {
		t.Errorf("expected counter, got %q", g.Name.Value)
	}
}

func TestParseCallbackDecl(t *testing.T) {
	script, log := parseSource(t, "callback[1](a, b) { return; }")
	requireNoErrors(t, log)
	cb := script.Decls[0].(*ast.CallbackDecl)
	if len(cb.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(cb.Args))
	}
}

func TestParseAnnotations(t *testing.T) {
	script, log := parseSource(t, "@no_return\n@raw(1, 2)\ndef f() {}")
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	if len(fn.Annotations) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(fn.Annotations))
	}
	if fn.Annotations[0].Name.Value != "no_return" {
		t.Errorf("expected no_return, got %q", fn.Annotations[0].Name.Value)
	}
	if len(fn.Annotations[1].Args) != 2 {
		t.Errorf("expected 2 args on raw annotation, got %d", len(fn.Annotations[1].Args))
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	script, log := parseSource(t, "def f() { let x; x = 1 + 2 * 3; }")
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	block := fn.Body.(*ast.BlockStmt)
	assign := block.Stmts[1].(*ast.AssignmentStmt)
	add := assign.Right.(*ast.BinaryExpr)
	if add.Op != ast.OpAdd {
		t.Fatalf("expected top-level op to be +, got %v", add.Op)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Op != ast.OpMultiply {
		t.Fatalf("expected right side to be a multiplication, got %#v", add.Right)
	}
}

func TestParseStaticArrayAssignment(t *testing.T) {
	script, log := parseSource(t, "def f() { let a; a = [1, 2, 3]; }")
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	block := fn.Body.(*ast.BlockStmt)
	assign := block.Stmts[1].(*ast.AssignmentStmt)
	arr := assign.Right.(*ast.ArrayExpr)
	if arr.IsCount {
		t.Fatalf("expected static array, got count form")
	}
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(arr.Elements))
	}
}

func TestParseEmptyArrayAssignment(t *testing.T) {
	script, log := parseSource(t, "def f() { let a; a = array[5]; }")
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	block := fn.Body.(*ast.BlockStmt)
	assign := block.Stmts[1].(*ast.AssignmentStmt)
	arr := assign.Right.(*ast.ArrayExpr)
	if !arr.IsCount {
		t.Fatalf("expected count array, got static form")
	}
	if len(arr.Elements) != 1 {
		t.Fatalf("expected exactly one count expression, got %d", len(arr.Elements))
	}
}

func TestParseIndexAndDereference(t *testing.T) {
	script, log := parseSource(t, "def f() { let a; let x; x = *a[2]; }")
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	block := fn.Body.(*ast.BlockStmt)
	assign := block.Stmts[2].(*ast.AssignmentStmt)
	re := assign.Right.(*ast.RefExpr)
	deref, ok := re.Ref.(*ast.DereferenceRef)
	if !ok {
		t.Fatalf("expected DereferenceRef, got %T", re.Ref)
	}
	if deref.Offset == nil {
		t.Fatalf("expected dereference offset from the index")
	}
}

func TestParseDoubleDereferenceFails(t *testing.T) {
	_, log := parseSource(t, "def f() { let a; let x; x = **a; }")
	if !log.HasErrors() {
		t.Fatalf("expected double dereference to be rejected")
	}
}

func TestParseIncrementNotation(t *testing.T) {
	script, log := parseSource(t, "def f() { let a; ++a; a++; }")
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	block := fn.Body.(*ast.BlockStmt)
	pre := block.Stmts[1].(*ast.ExprStmt).Expr.(*ast.IncrementExpr)
	if pre.Notation != ast.Prefix {
		t.Errorf("expected prefix notation")
	}
	post := block.Stmts[2].(*ast.ExprStmt).Expr.(*ast.IncrementExpr)
	if post.Notation != ast.Postfix {
		t.Errorf("expected postfix notation")
	}
}

func TestParseMatchStatement(t *testing.T) {
	script, log := parseSource(t, `def f() {
		let x;
		match (x) {
			1 -> { return; }
			2, 3 -> { break; }
			else -> { continue; }
		}
	}`)
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	block := fn.Body.(*ast.BlockStmt)
	m := block.Stmts[1].(*ast.MatchStmt)
	if len(m.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(m.Cases))
	}
	if len(m.Cases[1].Conditions) != 2 {
		t.Fatalf("expected 2 conditions in second case, got %d", len(m.Cases[1].Conditions))
	}
	if m.Default == nil {
		t.Fatalf("expected a default case")
	}
}

func TestParseMatchMultipleDefaultCasesFails(t *testing.T) {
	_, log := parseSource(t, `def f() {
		let x;
		match (x) {
			else -> { return; }
			else -> { return; }
		}
	}`)
	if !log.HasErrors() {
		t.Fatalf("expected multiple default cases to be rejected")
	}
	found := false
	for _, d := range log.Errors() {
		if d.Kind == "multiple-default-cases" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a multiple-default-cases diagnostic")
	}
}

func TestParseForLoop(t *testing.T) {
	script, log := parseSource(t, `def f() {
		let i;
		for (i = 0; i < 10; i += 1) { printf("%d", i); }
	}`)
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	block := fn.Body.(*ast.BlockStmt)
	loop := block.Stmts[1].(*ast.ForStmt)
	if _, ok := loop.Init.(*ast.AssignmentStmt); !ok {
		t.Fatalf("expected init to be an assignment, got %T", loop.Init)
	}
	if _, ok := loop.Check.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected check to be a binary expr, got %T", loop.Check)
	}
}

func TestParseForLoopRequiresAssignmentInit(t *testing.T) {
	_, log := parseSource(t, `def f() {
		let i;
		for (i; i < 10; i += 1) {}
	}`)
	if !log.HasErrors() {
		t.Fatalf("expected bare expression for-init to be rejected")
	}
}

func TestParseIfElse(t *testing.T) {
	script, log := parseSource(t, `def f() {
		let x;
		if (x) { return; } else { yield; }
	}`)
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	block := fn.Body.(*ast.BlockStmt)
	ifStmt := block.Stmts[1].(*ast.IfStmt)
	if ifStmt.Else == nil {
		t.Fatalf("expected an else branch")
	}
}

func TestParseIntLiteralBases(t *testing.T) {
	script, log := parseSource(t, "const A = 0x1F; const B = 0o17; const C = 0b101;")
	requireNoErrors(t, log)
	a := script.Decls[0].(*ast.ConstDecl).Value.(*ast.LiteralExpr)
	b := script.Decls[1].(*ast.ConstDecl).Value.(*ast.LiteralExpr)
	c := script.Decls[2].(*ast.ConstDecl).Value.(*ast.LiteralExpr)
	if a.Value.Int != 31 {
		t.Errorf("expected 0x1F == 31, got %d", a.Value.Int)
	}
	if b.Value.Int != 15 {
		t.Errorf("expected 0o17 == 15, got %d", b.Value.Int)
	}
	if c.Value.Int != 5 {
		t.Errorf("expected 0b101 == 5, got %d", c.Value.Int)
	}
}

func TestParseEnumAccess(t *testing.T) {
	script, log := parseSource(t, "def f() { let x; x = Color.Red; }")
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	block := fn.Body.(*ast.BlockStmt)
	assign := block.Stmts[1].(*ast.AssignmentStmt)
	access := assign.Right.(*ast.EnumAccessExpr)
	if access.Enum.Value != "Color" || access.Variant.Value != "Red" {
		t.Fatalf("unexpected enum access: %+v", access)
	}
}

func TestParseFunctionCall(t *testing.T) {
	script, log := parseSource(t, "def f() { g(1, 2); }")
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	block := fn.Body.(*ast.BlockStmt)
	call := block.Stmts[0].(*ast.ExprStmt).Expr.(*ast.FunctionCallExpr)
	if call.Callee.Value != "g" || len(call.Args) != 2 {
		t.Fatalf("unexpected call: %+v", call)
	}
}

func TestParseErrorRecoverySkipsToNextDecl(t *testing.T) {
	script, log := parseSource(t, "def broken( {} const OK = 1;")
	if !log.HasErrors() {
		t.Fatalf("expected a parse error from the malformed function")
	}
	foundConst := false
	for _, d := range script.Decls {
		if c, ok := d.(*ast.ConstDecl); ok && c.Name.Value == "OK" {
			foundConst = true
		}
	}
	if !foundConst {
		t.Fatalf("expected recovery to still parse the trailing const decl")
	}
}

func TestParseCompoundAssignmentOperators(t *testing.T) {
	script, log := parseSource(t, `def f() {
		let a;
		a += 1;
		a -= 1;
		a *= 2;
		a /= 2;
		a %= 2;
		a |= 1;
		a &= 1;
		a ^= 1;
		a <<= 1;
		a >>= 1;
	}`)
	requireNoErrors(t, log)
	fn := script.Decls[0].(*ast.FunctionDecl)
	block := fn.Body.(*ast.BlockStmt)
	wantOps := []ast.Operator{
		ast.OpAssignAdd, ast.OpAssignSubtract, ast.OpAssignMultiply, ast.OpAssignDivide,
		ast.OpAssignModulo, ast.OpAssignBitwiseOr, ast.OpAssignBitwiseAnd, ast.OpAssignXor,
		ast.OpAssignLeftShift, ast.OpAssignRightShift,
	}
	for i, want := range wantOps {
		assign := block.Stmts[i+1].(*ast.AssignmentStmt)
		if assign.Op != want {
			t.Errorf("stmt %d: expected op %v, got %v", i, want, assign.Op)
		}
	}
}
