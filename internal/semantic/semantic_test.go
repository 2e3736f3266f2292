package semantic

import (
	"testing"

	"exalt/internal/diag"
	"exalt/internal/parser"
	"exalt/internal/sem"
)

func analyzeSource(t *testing.T, src string) (*sem.Script, *diag.CompilerLog) {
	t.Helper()
	log := &diag.CompilerLog{}
	script := parser.Parse("test.exalt", src, log)
	if log.HasErrors() {
		for _, d := range log.Errors() {
			t.Fatalf("unexpected parse error: %s", d.Error())
		}
	}
	sema := NewAnalyzer(log)
	return sema.Analyze(script), log
}

func requireNoAnalysisErrors(t *testing.T, log *diag.CompilerLog) {
	t.Helper()
	if log.HasErrors() {
		for _, d := range log.Errors() {
			t.Errorf("unexpected analysis error: %s", d.Error())
		}
	}
}

// firstReturn digs out the sole top-level return statement of a
// function body lowered from a single-statement block.
func firstReturn(t *testing.T, body sem.Stmt) sem.ReturnStmt {
	t.Helper()
	block, ok := body.(sem.BlockStmt)
	if !ok {
		t.Fatalf("body type = %T, want sem.BlockStmt", body)
	}
	if len(block.Stmts) != 1 {
		t.Fatalf("block has %d statements, want 1", len(block.Stmts))
	}
	ret, ok := block.Stmts[0].(sem.ReturnStmt)
	if !ok {
		t.Fatalf("statement type = %T, want sem.ReturnStmt", block.Stmts[0])
	}
	return ret
}

func TestAnalyzeSimpleFunction(t *testing.T) {
	out, log := analyzeSource(t, "def main() { return 0; }")
	requireNoAnalysisErrors(t, log)
	if len(out.Decls) != 1 {
		t.Fatalf("Decls = %d, want 1", len(out.Decls))
	}
	fn, ok := out.Decls[0].(*sem.FunctionDecl)
	if !ok {
		t.Fatalf("decl type = %T, want *sem.FunctionDecl", out.Decls[0])
	}
	if fn.Symbol.Name != "main" {
		t.Errorf("Symbol.Name = %q, want main", fn.Symbol.Name)
	}
}

func TestAnalyzeForwardReferenceResolves(t *testing.T) {
	out, log := analyzeSource(t, "def a() { b(); } def b() { return 0; }")
	requireNoAnalysisErrors(t, log)
	if len(out.Decls) != 2 {
		t.Fatalf("Decls = %d, want 2", len(out.Decls))
	}
}

func TestAnalyzeDuplicateFunctionIsError(t *testing.T) {
	_, log := analyzeSource(t, "def a() {} def a() {}")
	if !log.HasErrors() {
		t.Fatal("duplicate function definition did not produce an error")
	}
}

func TestAnalyzeEnumVariantsFoldToSequentialInts(t *testing.T) {
	out, log := analyzeSource(t, "enum Color { Red = 0, Green = 1, Blue = 2 } def main() { return Color.Green; }")
	requireNoAnalysisErrors(t, log)
	fn := out.Decls[0].(*sem.FunctionDecl)
	ret := firstReturn(t, fn.Body)
	lit, ok := ret.Value.(sem.LiteralExpr)
	if !ok {
		t.Fatalf("return value type = %T, want sem.LiteralExpr", ret.Value)
	}
	if lit.Value.Int != 1 {
		t.Errorf("Color.Green folded to %d, want 1", lit.Value.Int)
	}
}

func TestAnalyzeConstantFolding(t *testing.T) {
	out, log := analyzeSource(t, "const N = 2 + 3; def main() { return N; }")
	requireNoAnalysisErrors(t, log)
	fn := out.Decls[0].(*sem.FunctionDecl)
	ret := firstReturn(t, fn.Body)
	lit := ret.Value.(sem.LiteralExpr)
	if lit.Value.Int != 5 {
		t.Errorf("N folded to %d, want 5", lit.Value.Int)
	}
}

func TestAnalyzeGlobalsCountsDeclaredGlobals(t *testing.T) {
	out, log := analyzeSource(t, "let x; let y; def main() { return 0; }")
	requireNoAnalysisErrors(t, log)
	if out.Globals != 2 {
		t.Errorf("Globals = %d, want 2", out.Globals)
	}
}

func TestAnalyzeCallbackDecl(t *testing.T) {
	out, log := analyzeSource(t, "callback[1]() { return 0; }")
	requireNoAnalysisErrors(t, log)
	if len(out.Decls) != 1 {
		t.Fatalf("Decls = %d, want 1", len(out.Decls))
	}
	if _, ok := out.Decls[0].(*sem.CallbackDecl); !ok {
		t.Fatalf("decl type = %T, want *sem.CallbackDecl", out.Decls[0])
	}
}
