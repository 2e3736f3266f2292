package refine

import (
	"testing"

	"exalt/internal/ast"
	"exalt/internal/decompiler/ir"
)

func zero() ir.Expr { return ir.LiteralExpr{Value: ir.IntLiteral{Value: 0}} }

func TestStripDefaultReturnRemovesTrailingReturnZero(t *testing.T) {
	block := []ir.Stmt{
		ir.ExprStmt{Expr: zero()},
		ir.ReturnStmt{Value: zero()},
	}
	removed := StripDefaultReturn(&block)
	if !removed {
		t.Fatalf("expected a trailing return 0 to be recognized")
	}
	if len(block) != 1 {
		t.Fatalf("expected the trailing return to be removed, got %#v", block)
	}
}

func TestStripDefaultReturnLeavesOtherReturnsAlone(t *testing.T) {
	block := []ir.Stmt{
		ir.ReturnStmt{Value: ir.LiteralExpr{Value: ir.IntLiteral{Value: 1}}},
	}
	if StripDefaultReturn(&block) {
		t.Fatalf("a non-zero trailing return should not be stripped")
	}
	if len(block) != 1 {
		t.Fatalf("block should be unchanged")
	}
}

func TestPruneUnusedLabelsDropsOrphans(t *testing.T) {
	block := ir.BlockStmt{Stmts: []ir.Stmt{
		ir.LabelStmt{Label: "L1"},
		ir.LabelStmt{Label: "L2"},
		ir.GotoStmt{Label: "L2"},
	}}
	out := PruneUnusedLabels(block).(ir.BlockStmt)
	if len(out.Stmts) != 2 {
		t.Fatalf("expected the unreferenced label to be dropped, got %#v", out.Stmts)
	}
	if lbl, ok := out.Stmts[0].(ir.LabelStmt); !ok || lbl.Label != "L2" {
		t.Errorf("expected L1 to be pruned, not L2")
	}
}

func TestCollapseWhileLoops(t *testing.T) {
	block := ir.BlockStmt{Stmts: []ir.Stmt{
		ir.LabelStmt{Label: "check"},
		ir.IfStmt{
			Check: zero(),
			Then: ir.BlockStmt{Stmts: []ir.Stmt{
				ir.ExprStmt{Expr: zero()},
				ir.GotoStmt{Label: "check"},
			}},
			TermLabel: "done",
		},
		ir.LabelStmt{Label: "done"},
	}}
	out := CollapseWhileLoops(block).(ir.BlockStmt)
	if len(out.Stmts) != 2 {
		t.Fatalf("expected the label+if pair to collapse into one While, got %#v", out.Stmts)
	}
	while, ok := out.Stmts[0].(ir.WhileStmt)
	if !ok {
		t.Fatalf("expected a WhileStmt, got %T", out.Stmts[0])
	}
	body := while.Body.(ir.BlockStmt)
	if len(body.Stmts) != 1 {
		t.Fatalf("expected the trailing goto-to-check to be dropped from the body, got %#v", body.Stmts)
	}
}

func TestCollapseForLoops(t *testing.T) {
	block := ir.BlockStmt{Stmts: []ir.Stmt{
		ir.AssignStmt{Op: ast.OpAssign, Left: ir.VarReference{Frame: ir.FrameId{Index: 0}}, Right: zero()},
		ir.GotoStmt{Label: "check"},
		ir.LabelStmt{Label: "step"},
		ir.AssignStmt{Op: ast.OpAssignAdd, Left: ir.VarReference{Frame: ir.FrameId{Index: 0}}, Right: zero()},
		ir.LabelStmt{Label: "check"},
		ir.IfStmt{
			Check: zero(),
			Then: ir.BlockStmt{Stmts: []ir.Stmt{
				ir.ExprStmt{Expr: zero()},
				ir.GotoStmt{Label: "step"},
			}},
			TermLabel: "done",
		},
	}}
	out := CollapseForLoops(block).(ir.BlockStmt)
	if len(out.Stmts) != 1 {
		t.Fatalf("expected the six-statement sequence to collapse into one For, got %#v", out.Stmts)
	}
	if _, ok := out.Stmts[0].(ir.ForStmt); !ok {
		t.Fatalf("expected a ForStmt, got %T", out.Stmts[0])
	}
}

func TestAddMatchBreaksRewritesGotoToDoneLabel(t *testing.T) {
	match := ir.MatchStmt{
		Switch: zero(),
		Cases: []ir.Case{
			{Conditions: []ir.Expr{zero()}, Body: ir.BlockStmt{Stmts: []ir.Stmt{ir.GotoStmt{Label: "done"}}}},
		},
		DoneLabel: "done",
	}
	out := AddMatchBreaks(match).(ir.MatchStmt)
	body := out.Cases[0].Body.(ir.BlockStmt)
	if _, ok := body.Stmts[0].(ir.BreakStmt); !ok {
		t.Errorf("expected the goto to the done label to become a break, got %#v", body.Stmts[0])
	}
}

func TestCollapseStaticArrayInits(t *testing.T) {
	vars := NewVarTracker(3)
	for _, id := range []int{0, 1, 2} {
		if err := vars.MarkIndexed(id); err != nil {
			t.Fatal(err)
		}
	}
	if err := vars.MarkInitialized(0); err != nil {
		t.Fatal(err)
	}

	block := ir.BlockStmt{Stmts: []ir.Stmt{
		ir.AssignStmt{Op: ast.OpAssign, Left: ir.VarReference{Frame: ir.FrameId{Index: 0}}, Right: ir.LiteralExpr{Value: ir.IntLiteral{Value: 1}}},
		ir.AssignStmt{Op: ast.OpAssign, Left: ir.VarReference{Frame: ir.FrameId{Index: 1}}, Right: ir.LiteralExpr{Value: ir.IntLiteral{Value: 2}}},
		ir.AssignStmt{Op: ast.OpAssign, Left: ir.VarReference{Frame: ir.FrameId{Index: 2}}, Right: ir.LiteralExpr{Value: ir.IntLiteral{Value: 3}}},
	}}
	out, err := CollapseStaticArrayInits(block, vars)
	if err != nil {
		t.Fatal(err)
	}
	stmts := out.(ir.BlockStmt).Stmts
	if len(stmts) != 1 {
		t.Fatalf("expected the three assignments to collapse into one static array init, got %#v", stmts)
	}
	assign := stmts[0].(ir.AssignStmt)
	arr, ok := assign.Right.(ir.StaticArrayInitExpr)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected a 3-element static array init, got %#v", assign.Right)
	}
}

func TestInjectVarDeclarationsPrepends(t *testing.T) {
	block := ir.BlockStmt{Stmts: []ir.Stmt{ir.ReturnStmt{}}}
	out, err := InjectVarDeclarations(block, []DeclarationRequest{VarDeclarationRequest{Index: 0}})
	if err != nil {
		t.Fatal(err)
	}
	stmts := out.(ir.BlockStmt).Stmts
	if len(stmts) != 2 {
		t.Fatalf("expected the declaration to be prepended, got %#v", stmts)
	}
	if _, ok := stmts[0].(ir.VarDeclStmt); !ok {
		t.Errorf("expected the first statement to be a VarDeclStmt, got %T", stmts[0])
	}
}
