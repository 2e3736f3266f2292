package refine

import (
	"fmt"

	"exalt/internal/ast"
	"exalt/internal/decompiler/ir"
)

// StripDefaultReturn removes a trailing `return 0;` from a function
// body - internal/codegen always appends one unless @NoDefaultReturn
// is present, so its absence here is itself the signal to re-attach
// that annotation. Reports whether it removed one.
func StripDefaultReturn(block *[]ir.Stmt) bool {
	n := len(*block)
	if n == 0 {
		return false
	}
	last, ok := (*block)[n-1].(ir.ReturnStmt)
	if !ok || last.Value == nil {
		return false
	}
	lit, ok := last.Value.(ir.LiteralExpr)
	if !ok {
		return false
	}
	i, ok := lit.Value.(ir.IntLiteral)
	if !ok || i.Value != 0 {
		return false
	}
	*block = (*block)[:n-1]
	return true
}

// PruneUnusedLabels removes every Stmt.Label a prior pass left behind
// with no remaining Goto referencing it (loop/match collapsing
// consumes the gotos it recognizes but leaves the label statement
// itself for this pass to clean up).
func PruneUnusedLabels(stmt ir.Stmt) ir.Stmt {
	counts := map[string]int{}
	countLabelRefs(stmt, counts)
	return pruneLabels(stmt, counts)
}

func countLabelRefs(stmt ir.Stmt, counts map[string]int) {
	switch s := stmt.(type) {
	case ir.BlockStmt:
		for _, line := range s.Stmts {
			countLabelRefs(line, counts)
		}
	case ir.ForStmt:
		countLabelRefs(s.Body, counts)
	case ir.GotoStmt:
		counts[s.Label]++
	case ir.IfStmt:
		countLabelRefs(s.Then, counts)
		if s.Else != nil {
			countLabelRefs(s.Else, counts)
		}
	case ir.MatchStmt:
		for _, cs := range s.Cases {
			countLabelRefs(cs.Body, counts)
		}
		if s.Default != nil {
			countLabelRefs(s.Default, counts)
		}
	case ir.WhileStmt:
		countLabelRefs(s.Body, counts)
	}
}

func pruneLabels(stmt ir.Stmt, counts map[string]int) ir.Stmt {
	switch s := stmt.(type) {
	case ir.BlockStmt:
		out := make([]ir.Stmt, 0, len(s.Stmts))
		for _, line := range s.Stmts {
			if lbl, ok := line.(ir.LabelStmt); ok {
				if counts[lbl.Label] == 0 {
					continue
				}
				out = append(out, line)
				continue
			}
			out = append(out, pruneLabels(line, counts))
		}
		return ir.BlockStmt{Stmts: out}
	case ir.ForStmt:
		s.Body = pruneLabels(s.Body, counts)
		return s
	case ir.IfStmt:
		s.Then = pruneLabels(s.Then, counts)
		if s.Else != nil {
			s.Else = pruneLabels(s.Else, counts)
		}
		return s
	case ir.MatchStmt:
		for i := range s.Cases {
			s.Cases[i].Body = pruneLabels(s.Cases[i].Body, counts)
		}
		if s.Default != nil {
			s.Default = pruneLabels(s.Default, counts)
		}
		return s
	case ir.WhileStmt:
		s.Body = pruneLabels(s.Body, counts)
		return s
	default:
		return stmt
	}
}

// CollapseWhileLoops recognizes the `label L: if (check) { ...; goto L; }`
// shape the code generator emits for a while loop and folds it back
// into a single Stmt.While, rewriting the implicit trailing jump to
// the check and the loop's break target into continue/break.
func CollapseWhileLoops(stmt ir.Stmt) ir.Stmt {
	switch s := stmt.(type) {
	case ir.BlockStmt:
		contents := append([]ir.Stmt(nil), s.Stmts...)
		i := 0
		for i+1 < len(contents) {
			if isWhileLoopSequence(contents[i], contents[i+1]) {
				lbl := contents[i].(ir.LabelStmt)
				ifst := contents[i+1].(ir.IfStmt)
				body := ifst.Then
				if blk, ok := body.(ir.BlockStmt); ok && len(blk.Stmts) > 0 {
					blk.Stmts = blk.Stmts[:len(blk.Stmts)-1]
					body = blk
				}
				body = replaceJumps(body, ifst.TermLabel, lbl.Label)
				body = CollapseWhileLoops(body)
				replacement := ir.WhileStmt{Check: ifst.Check, Body: body}
				contents = append(contents[:i], append([]ir.Stmt{replacement}, contents[i+2:]...)...)
			}
			contents[i] = CollapseWhileLoops(contents[i])
			i++
		}
		for ; i < len(contents); i++ {
			contents[i] = CollapseWhileLoops(contents[i])
		}
		return ir.BlockStmt{Stmts: contents}
	case ir.ForStmt:
		s.Body = CollapseWhileLoops(s.Body)
		return s
	case ir.IfStmt:
		s.Then = CollapseWhileLoops(s.Then)
		if s.Else != nil {
			s.Else = CollapseWhileLoops(s.Else)
		}
		return s
	case ir.MatchStmt:
		for i := range s.Cases {
			s.Cases[i].Body = CollapseWhileLoops(s.Cases[i].Body)
		}
		if s.Default != nil {
			s.Default = CollapseWhileLoops(s.Default)
		}
		return s
	case ir.WhileStmt:
		s.Body = CollapseWhileLoops(s.Body)
		return s
	default:
		return stmt
	}
}

func isWhileLoopSequence(a, b ir.Stmt) bool {
	lbl, ok := a.(ir.LabelStmt)
	if !ok {
		return false
	}
	ifst, ok := b.(ir.IfStmt)
	if !ok {
		return false
	}
	blk, ok := ifst.Then.(ir.BlockStmt)
	if !ok || len(blk.Stmts) == 0 {
		return false
	}
	g, ok := blk.Stmts[len(blk.Stmts)-1].(ir.GotoStmt)
	return ok && g.Label == lbl.Label
}

// CollapseForLoops recognizes the six-statement shape the code
// generator emits for a for loop (init; goto check; label step: step;
// label check: if (check) { ...; goto step; }) and folds it into a
// single Stmt.For.
func CollapseForLoops(stmt ir.Stmt) ir.Stmt {
	switch s := stmt.(type) {
	case ir.BlockStmt:
		contents := append([]ir.Stmt(nil), s.Stmts...)
		i := 0
		for i+5 < len(contents) {
			if isForLoopSequence(contents[i : i+6]) {
				init := contents[i]
				stepLbl := contents[i+2].(ir.LabelStmt)
				step := contents[i+3]
				ifst := contents[i+5].(ir.IfStmt)
				body := ifst.Then
				if blk, ok := body.(ir.BlockStmt); ok && len(blk.Stmts) > 0 {
					blk.Stmts = blk.Stmts[:len(blk.Stmts)-1]
					body = blk
				}
				body = replaceJumps(body, ifst.TermLabel, stepLbl.Label)
				body = CollapseForLoops(body)
				replacement := ir.ForStmt{Init: init, Check: ifst.Check, Step: step, Body: body}
				contents = append(contents[:i], append([]ir.Stmt{replacement}, contents[i+6:]...)...)
			}
			contents[i] = CollapseForLoops(contents[i])
			i++
		}
		for ; i < len(contents); i++ {
			contents[i] = CollapseForLoops(contents[i])
		}
		return ir.BlockStmt{Stmts: contents}
	case ir.ForStmt:
		s.Body = CollapseForLoops(s.Body)
		return s
	case ir.IfStmt:
		s.Then = CollapseForLoops(s.Then)
		if s.Else != nil {
			s.Else = CollapseForLoops(s.Else)
		}
		return s
	case ir.MatchStmt:
		for i := range s.Cases {
			s.Cases[i].Body = CollapseForLoops(s.Cases[i].Body)
		}
		if s.Default != nil {
			s.Default = CollapseForLoops(s.Default)
		}
		return s
	case ir.WhileStmt:
		s.Body = CollapseForLoops(s.Body)
		return s
	default:
		return stmt
	}
}

func isForLoopSequence(stmts []ir.Stmt) bool {
	if _, ok := stmts[0].(ir.AssignStmt); !ok {
		return false
	}
	if _, ok := stmts[1].(ir.GotoStmt); !ok {
		return false
	}
	stepLbl, ok := stmts[2].(ir.LabelStmt)
	if !ok {
		return false
	}
	checkLbl, ok := stmts[4].(ir.LabelStmt)
	if !ok {
		return false
	}
	ifst, ok := stmts[5].(ir.IfStmt)
	if !ok {
		return false
	}
	maybeCheck := stmts[1].(ir.GotoStmt)
	blk, ok := ifst.Then.(ir.BlockStmt)
	if !ok || len(blk.Stmts) == 0 {
		return false
	}
	g, ok := blk.Stmts[len(blk.Stmts)-1].(ir.GotoStmt)
	if !ok {
		return false
	}
	return maybeCheck.Label == checkLbl.Label && g.Label == stepLbl.Label
}

// AddMatchBreaks rewrites any goto targeting a match's shared done
// label, inside that match's own cases or default, into a Stmt.Break -
// the code generator emits an explicit jump for every case's fallout,
// which reads as a no-op break in the decompiled source.
func AddMatchBreaks(stmt ir.Stmt) ir.Stmt {
	switch s := stmt.(type) {
	case ir.BlockStmt:
		for i, line := range s.Stmts {
			s.Stmts[i] = AddMatchBreaks(line)
		}
		return s
	case ir.ForStmt:
		s.Body = AddMatchBreaks(s.Body)
		return s
	case ir.IfStmt:
		s.Then = AddMatchBreaks(s.Then)
		if s.Else != nil {
			s.Else = AddMatchBreaks(s.Else)
		}
		return s
	case ir.MatchStmt:
		for i := range s.Cases {
			s.Cases[i].Body = AddMatchBreaks(s.Cases[i].Body)
			s.Cases[i].Body = replaceJumps(s.Cases[i].Body, s.DoneLabel, "")
		}
		if s.Default != nil {
			s.Default = AddMatchBreaks(s.Default)
			s.Default = replaceJumps(s.Default, s.DoneLabel, "")
		}
		return s
	case ir.WhileStmt:
		s.Body = AddMatchBreaks(s.Body)
		return s
	default:
		return stmt
	}
}

// replaceJumps turns every Stmt.Goto matching breakLabel into a break
// and every one matching continueLabel (when non-empty) into a
// continue, recursing into every nested block, if, match and loop
// body (nested loops and matches included).
func replaceJumps(stmt ir.Stmt, breakLabel, continueLabel string) ir.Stmt {
	switch s := stmt.(type) {
	case ir.BlockStmt:
		for i, line := range s.Stmts {
			if g, ok := line.(ir.GotoStmt); ok {
				switch {
				case g.Label == breakLabel:
					s.Stmts[i] = ir.BreakStmt{}
				case continueLabel != "" && g.Label == continueLabel:
					s.Stmts[i] = ir.ContinueStmt{}
				}
			} else {
				s.Stmts[i] = replaceJumps(line, breakLabel, continueLabel)
			}
		}
		return s
	case ir.ForStmt:
		s.Body = replaceJumps(s.Body, breakLabel, continueLabel)
		return s
	case ir.IfStmt:
		s.Then = replaceJumps(s.Then, breakLabel, continueLabel)
		if s.Else != nil {
			s.Else = replaceJumps(s.Else, breakLabel, continueLabel)
		}
		return s
	case ir.MatchStmt:
		for i := range s.Cases {
			s.Cases[i].Body = replaceJumps(s.Cases[i].Body, breakLabel, continueLabel)
		}
		if s.Default != nil {
			s.Default = replaceJumps(s.Default, breakLabel, continueLabel)
		}
		return s
	case ir.WhileStmt:
		s.Body = replaceJumps(s.Body, breakLabel, continueLabel)
		return s
	default:
		return stmt
	}
}

// CollectVarDetails builds a fresh VarTracker for one function body,
// pre-marking its arity parameters as initialized/used/parameter, then
// walks the body recording every read, write and array index against
// either that tracker or globalTracker depending on FrameId.Global.
func CollectVarDetails(stmt ir.Stmt, arity, frameSize int, globalTracker *VarTracker) (*VarTracker, error) {
	vars := NewVarTracker(frameSize)
	for i := 0; i < arity; i++ {
		if err := vars.MarkInitialized(i); err != nil {
			return nil, err
		}
		if err := vars.MarkUsed(i); err != nil {
			return nil, err
		}
		if err := vars.MarkParameter(i); err != nil {
			return nil, err
		}
	}
	if err := collectVarDetailsStmt(stmt, vars, globalTracker); err != nil {
		return nil, err
	}
	return vars, nil
}

func collectVarDetailsStmt(stmt ir.Stmt, vars, globals *VarTracker) error {
	switch s := stmt.(type) {
	case ir.AssignStmt:
		if err := collectVarDetailsExpr(s.Right, vars, globals); err != nil {
			return err
		}
		if v, ok := s.Left.(ir.VarReference); ok {
			target := vars
			if v.Frame.Global {
				target = globals
			}
			if s.Op == ast.OpAssign {
				init, err := target.IsInitialized(v.Frame.Index)
				if err != nil {
					return err
				}
				if init {
					return target.MarkReassigned(v.Frame.Index)
				}
				return target.MarkInitialized(v.Frame.Index)
			}
			return nil
		}
		return collectVarDetailsRef(s.Left, vars, globals)
	case ir.BlockStmt:
		for _, line := range s.Stmts {
			if err := collectVarDetailsStmt(line, vars, globals); err != nil {
				return err
			}
		}
	case ir.ExprStmt:
		return collectVarDetailsExpr(s.Expr, vars, globals)
	case ir.ForStmt:
		if err := collectVarDetailsStmt(s.Init, vars, globals); err != nil {
			return err
		}
		if err := collectVarDetailsExpr(s.Check, vars, globals); err != nil {
			return err
		}
		if err := collectVarDetailsStmt(s.Step, vars, globals); err != nil {
			return err
		}
		return collectVarDetailsStmt(s.Body, vars, globals)
	case ir.IfStmt:
		if err := collectVarDetailsExpr(s.Check, vars, globals); err != nil {
			return err
		}
		if err := collectVarDetailsStmt(s.Then, vars, globals); err != nil {
			return err
		}
		if s.Else != nil {
			return collectVarDetailsStmt(s.Else, vars, globals)
		}
	case ir.MatchStmt:
		if err := collectVarDetailsExpr(s.Switch, vars, globals); err != nil {
			return err
		}
		for _, cs := range s.Cases {
			for _, cond := range cs.Conditions {
				if err := collectVarDetailsExpr(cond, vars, globals); err != nil {
					return err
				}
			}
			if err := collectVarDetailsStmt(cs.Body, vars, globals); err != nil {
				return err
			}
		}
		if s.Default != nil {
			return collectVarDetailsStmt(s.Default, vars, globals)
		}
	case ir.PrintfStmt:
		for _, arg := range s.Args {
			if err := collectVarDetailsExpr(arg, vars, globals); err != nil {
				return err
			}
		}
	case ir.ReturnStmt:
		if s.Value != nil {
			return collectVarDetailsExpr(s.Value, vars, globals)
		}
	case ir.WhileStmt:
		if err := collectVarDetailsExpr(s.Check, vars, globals); err != nil {
			return err
		}
		return collectVarDetailsStmt(s.Body, vars, globals)
	}
	return nil
}

func collectVarDetailsExpr(expr ir.Expr, vars, globals *VarTracker) error {
	switch e := expr.(type) {
	case ir.UnaryExpr:
		return collectVarDetailsExpr(e.Operand, vars, globals)
	case ir.BinaryExpr:
		if err := collectVarDetailsExpr(e.Left, vars, globals); err != nil {
			return err
		}
		return collectVarDetailsExpr(e.Right, vars, globals)
	case ir.CallExpr:
		for _, arg := range e.Args {
			if err := collectVarDetailsExpr(arg, vars, globals); err != nil {
				return err
			}
		}
	case ir.RefExpr:
		return collectVarDetailsRef(e.Ref, vars, globals)
	case ir.AddrExpr:
		return collectVarDetailsRef(e.Ref, vars, globals)
	case ir.IncExpr:
		return collectVarDetailsRef(e.Ref, vars, globals)
	case ir.GroupedExpr:
		return collectVarDetailsExpr(e.Inner, vars, globals)
	}
	return nil
}

func collectVarDetailsRef(ref ir.Reference, vars, globals *VarTracker) error {
	switch r := ref.(type) {
	case ir.VarReference:
		if r.Frame.Global {
			return globals.MarkUsed(r.Frame.Index)
		}
		return vars.MarkUsed(r.Frame.Index)
	case ir.IndexReference:
		if err := collectVarDetailsExpr(r.Index, vars, globals); err != nil {
			return err
		}
		target := vars
		if r.Frame.Global {
			target = globals
		}
		if err := target.MarkIndexed(r.Frame.Index); err != nil {
			return err
		}
		return target.MarkUsed(r.Frame.Index)
	case ir.DereferenceReference:
		if err := collectVarDetailsExpr(r.Index, vars, globals); err != nil {
			return err
		}
		target := vars
		if r.Frame.Global {
			target = globals
		}
		return target.MarkUsed(r.Frame.Index)
	}
	return nil
}

// CollapseStaticArrayInits recognizes a run of two or more consecutive
// `v(n) = x; v(n+1) = y; ...;` assignments to untouched local slots
// immediately following an array-starting assignment and folds them
// into one `v(n) = [x, y, ...];` static array initializer.
func CollapseStaticArrayInits(stmt ir.Stmt, vars *VarTracker) (ir.Stmt, error) {
	switch s := stmt.(type) {
	case ir.BlockStmt:
		contents := append([]ir.Stmt(nil), s.Stmts...)
		for idx := range contents {
			collapsed, err := CollapseStaticArrayInits(contents[idx], vars)
			if err != nil {
				return nil, err
			}
			contents[idx] = collapsed
		}

		i := 0
		for i < len(contents) {
			base := i
			as, ok := contents[i].(ir.AssignStmt)
			if !ok || as.Op != ast.OpAssign {
				i++
				continue
			}
			v, ok := as.Left.(ir.VarReference)
			if !ok {
				i++
				continue
			}
			i++
			init, err := vars.IsInitialized(v.Frame.Index)
			if err != nil {
				return nil, err
			}
			indexed, err := vars.IsIndexed(v.Frame.Index)
			if err != nil {
				return nil, err
			}
			if v.Frame.Global || !init || !indexed {
				continue
			}
			target := v.Frame.Index + 1
			for i < len(contents) {
				next, ok := contents[i].(ir.AssignStmt)
				if !ok || next.Op != ast.OpAssign {
					break
				}
				nv, ok := next.Left.(ir.VarReference)
				if !ok || nv.Frame.Global || nv.Frame.Index != target {
					break
				}
				reassigned, err := vars.IsReassigned(target)
				if err != nil {
					return nil, err
				}
				used, err := vars.IsUsed(target)
				if err != nil {
					return nil, err
				}
				if reassigned || used {
					break
				}
				if err := vars.MarkUsed(target); err != nil {
					return nil, err
				}
				target++
				i++
			}
			if i-base > 1 {
				elements := make([]ir.Expr, 0, i-base)
				first := contents[base].(ir.AssignStmt)
				elements = append(elements, first.Right)
				for _, st := range contents[base+1 : i] {
					elements = append(elements, st.(ir.AssignStmt).Right)
				}
				frameID := first.Left.FrameID()
				if err := vars.SetArrayLength(frameID.Index, len(elements)); err != nil {
					return nil, err
				}
				if err := vars.MarkStaticArray(frameID.Index); err != nil {
					return nil, err
				}
				replacement := ir.AssignStmt{Op: ast.OpAssign, Left: first.Left, Right: ir.StaticArrayInitExpr{Elements: elements}}
				contents = append(contents[:base], append([]ir.Stmt{replacement}, contents[i:]...)...)
				i = base + 1
			}
		}
		return ir.BlockStmt{Stmts: contents}, nil
	case ir.ForStmt:
		body, err := CollapseStaticArrayInits(s.Body, vars)
		if err != nil {
			return nil, err
		}
		s.Body = body
		return s, nil
	case ir.IfStmt:
		then, err := CollapseStaticArrayInits(s.Then, vars)
		if err != nil {
			return nil, err
		}
		s.Then = then
		if s.Else != nil {
			els, err := CollapseStaticArrayInits(s.Else, vars)
			if err != nil {
				return nil, err
			}
			s.Else = els
		}
		return s, nil
	case ir.MatchStmt:
		for i := range s.Cases {
			body, err := CollapseStaticArrayInits(s.Cases[i].Body, vars)
			if err != nil {
				return nil, err
			}
			s.Cases[i].Body = body
		}
		if s.Default != nil {
			def, err := CollapseStaticArrayInits(s.Default, vars)
			if err != nil {
				return nil, err
			}
			s.Default = def
		}
		return s, nil
	case ir.WhileStmt:
		body, err := CollapseStaticArrayInits(s.Body, vars)
		if err != nil {
			return nil, err
		}
		s.Body = body
		return s, nil
	default:
		return stmt, nil
	}
}

// InjectGlobalVarDeclarations prepends one ir.GlobalVarDecl per request
// to the front of the script's declaration list.
func InjectGlobalVarDeclarations(script *ir.Script, requests []DeclarationRequest) {
	inits := make([]ir.Decl, 0, len(requests))
	for _, req := range requests {
		switch r := req.(type) {
		case ArrayDeclarationRequest:
			count := r.Length
			inits = append(inits, ir.GlobalVarDecl{Base: r.Base, Count: &count})
		case VarDeclarationRequest:
			inits = append(inits, ir.GlobalVarDecl{Base: r.Index})
		}
	}
	script.Decls = append(inits, script.Decls...)
}

// InjectVarDeclarations prepends one ir.VarDeclStmt per request to the
// front of a function's top-level block - block must be a Stmt.Block.
func InjectVarDeclarations(block ir.Stmt, requests []DeclarationRequest) (ir.Stmt, error) {
	blk, ok := block.(ir.BlockStmt)
	if !ok {
		return nil, fmt.Errorf("refine: trying to add declarations to a block, but input is not a block")
	}
	inits := make([]ir.Stmt, 0, len(requests))
	for _, req := range requests {
		switch r := req.(type) {
		case ArrayDeclarationRequest:
			count := r.Length
			inits = append(inits, ir.VarDeclStmt{Frame: r.Base, Count: &count})
		case VarDeclarationRequest:
			inits = append(inits, ir.VarDeclStmt{Frame: r.Index})
		}
	}
	blk.Stmts = append(inits, blk.Stmts...)
	return blk, nil
}
