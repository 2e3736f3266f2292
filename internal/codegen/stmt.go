package codegen

import (
	"exalt/internal/ast"
	"exalt/internal/opcode"
	"exalt/internal/sem"
)

func (fg *funcGen) stmt(s sem.Stmt) {
	if s == nil {
		return
	}
	switch st := s.(type) {
	case sem.AssignmentStmt:
		fg.assignment(st)
	case sem.BlockStmt:
		for _, inner := range st.Stmts {
			fg.stmt(inner)
		}
	case sem.BreakStmt:
		target := fg.breakLbl[len(fg.breakLbl)-1]
		fg.emit(opcode.Opcode{Kind: opcode.Jump, Str: target})
	case sem.ContinueStmt:
		target := fg.contLbl[len(fg.contLbl)-1]
		fg.emit(opcode.Opcode{Kind: opcode.Jump, Str: target})
	case sem.ExprStmt:
		fg.expr(st.Expr, rvalue)
		fg.emit(opcode.Opcode{Kind: opcode.Consume})
	case sem.ForStmt:
		fg.forStmt(st)
	case sem.GotoStmt:
		fg.emit(opcode.Opcode{Kind: opcode.Jump, Str: st.Symbol.Name})
	case sem.IfStmt:
		fg.ifStmt(st)
	case sem.LabelStmt:
		fg.emit(opcode.Opcode{Kind: opcode.Label, Str: st.Symbol.Name})
	case sem.MatchStmt:
		fg.matchStmt(st)
	case sem.PrintfStmt:
		for _, arg := range st.Args {
			fg.expr(arg, rvalue)
		}
		fg.emit(opcode.Opcode{Kind: opcode.Format, Arity: uint8(len(st.Args))})
	case sem.ReturnStmt:
		fg.returnStmt(st)
	case sem.VarDeclStmt:
		fg.frame.reserve(st.Symbol, 1)
	case sem.WhileStmt:
		fg.whileStmt(st)
	case sem.YieldStmt:
		fg.emit(opcode.Opcode{Kind: opcode.Yield})
	}
}

func (fg *funcGen) assignment(st sem.AssignmentStmt) {
	if st.Op == ast.OpAssign {
		if arr, ok := st.Right.(sem.ArrayExpr); ok {
			switch init := arr.Init.(type) {
			case sem.StaticArrayInit:
				fg.staticArrayAssign(st.Left, init.Elements)
				return
			case sem.EmptyArrayInit:
				fg.emptyArrayAssign(st.Left, init.Size)
				return
			}
		}
		fg.ref(st.Left, lvalue)
		fg.expr(st.Right, rvalue)
		fg.emit(opcode.Opcode{Kind: opcode.Assign})
		return
	}
	fg.ref(st.Left, lvalue)
	fg.emit(opcode.Opcode{Kind: opcode.Dereference})
	fg.expr(st.Right, rvalue)
	fg.emit(binaryOpcode(unshorthand(st.Op)))
	fg.emit(opcode.Opcode{Kind: opcode.CompleteAssign})
}

// staticArrayAssign expands `arr = [a, b, c]` into one assignment per
// consecutive frame slot, starting at the base id reserved for the
// array symbol.
func (fg *funcGen) staticArrayAssign(left sem.Ref, elements []sem.Expr) {
	v, ok := left.(sem.VarRef)
	if !ok {
		return
	}
	base := fg.frame.reserve(v.Symbol, len(elements))
	for i, el := range elements {
		fg.emit(opcode.Opcode{Kind: opcode.VarAddr, FrameID: uint16(base + i)})
		fg.expr(el, rvalue)
		fg.emit(opcode.Opcode{Kind: opcode.Assign})
	}
}

// emptyArrayAssign handles `x = array[n];`: no opcodes are emitted at
// all, the assignment exists purely to reserve n consecutive frame
// slots for x. The decompiler recovers the array's extent later by
// watching which of those slots are ever touched.
func (fg *funcGen) emptyArrayAssign(left sem.Ref, size int) {
	v, ok := left.(sem.VarRef)
	if !ok {
		return
	}
	fg.frame.reserve(v.Symbol, size)
}

func unshorthand(op ast.Operator) ast.Operator {
	if plain, ok := op.Unshorthand(); ok {
		return plain
	}
	return op
}

func (fg *funcGen) ifStmt(st sem.IfStmt) {
	lend := fg.newLabel()
	if st.Else == nil {
		fg.expr(st.Condition, rvalue)
		fg.emit(opcode.Opcode{Kind: opcode.JumpZero, Str: lend})
		fg.stmt(st.Then)
		fg.emit(opcode.Opcode{Kind: opcode.Label, Str: lend})
		return
	}
	lelse := fg.newLabel()
	fg.expr(st.Condition, rvalue)
	fg.emit(opcode.Opcode{Kind: opcode.JumpZero, Str: lelse})
	fg.stmt(st.Then)
	fg.emit(opcode.Opcode{Kind: opcode.Jump, Str: lend})
	fg.emit(opcode.Opcode{Kind: opcode.Label, Str: lelse})
	fg.stmt(st.Else)
	fg.emit(opcode.Opcode{Kind: opcode.Label, Str: lend})
}

func (fg *funcGen) whileStmt(st sem.WhileStmt) {
	lcheck := fg.newLabel()
	ldone := fg.newLabel()
	fg.emit(opcode.Opcode{Kind: opcode.Label, Str: lcheck})
	fg.expr(st.Condition, rvalue)
	fg.emit(opcode.Opcode{Kind: opcode.JumpZero, Str: ldone})

	fg.breakLbl = append(fg.breakLbl, ldone)
	fg.contLbl = append(fg.contLbl, lcheck)
	fg.stmt(st.Body)
	fg.breakLbl = fg.breakLbl[:len(fg.breakLbl)-1]
	fg.contLbl = fg.contLbl[:len(fg.contLbl)-1]

	fg.emit(opcode.Opcode{Kind: opcode.Jump, Str: lcheck})
	fg.emit(opcode.Opcode{Kind: opcode.Label, Str: ldone})
}

func (fg *funcGen) forStmt(st sem.ForStmt) {
	lstep := fg.newLabel()
	lcheck := fg.newLabel()
	ldone := fg.newLabel()

	fg.stmt(st.Init)
	fg.emit(opcode.Opcode{Kind: opcode.Jump, Str: lcheck})
	fg.emit(opcode.Opcode{Kind: opcode.Label, Str: lstep})
	fg.stmt(st.Step)
	fg.emit(opcode.Opcode{Kind: opcode.Label, Str: lcheck})
	fg.expr(st.Check, rvalue)
	fg.emit(opcode.Opcode{Kind: opcode.JumpZero, Str: ldone})

	fg.breakLbl = append(fg.breakLbl, ldone)
	fg.contLbl = append(fg.contLbl, lstep)
	fg.stmt(st.Body)
	fg.breakLbl = fg.breakLbl[:len(fg.breakLbl)-1]
	fg.contLbl = fg.contLbl[:len(fg.contLbl)-1]

	fg.emit(opcode.Opcode{Kind: opcode.Jump, Str: lstep})
	fg.emit(opcode.Opcode{Kind: opcode.Label, Str: ldone})
}

func (fg *funcGen) matchStmt(st sem.MatchStmt) {
	ldone := fg.newLabel()
	fg.expr(st.Switch, rvalue)

	fg.breakLbl = append(fg.breakLbl, ldone)
	for _, cs := range st.Cases {
		lblock := fg.newLabel()
		lnext := fg.newLabel()
		for _, cond := range cs.Conditions {
			fg.emit(opcode.Opcode{Kind: opcode.Copy})
			fg.expr(cond, rvalue)
			fg.emit(opcode.Opcode{Kind: opcode.Equal})
			fg.emit(opcode.Opcode{Kind: opcode.JumpNotZero, Str: lblock})
		}
		fg.emit(opcode.Opcode{Kind: opcode.Jump, Str: lnext})
		fg.emit(opcode.Opcode{Kind: opcode.Label, Str: lblock})
		fg.stmt(cs.Body)
		fg.emit(opcode.Opcode{Kind: opcode.Jump, Str: ldone})
		fg.emit(opcode.Opcode{Kind: opcode.Label, Str: lnext})
	}
	if st.Default != nil {
		fg.stmt(st.Default)
		fg.emit(opcode.Opcode{Kind: opcode.Jump, Str: ldone})
	}
	fg.breakLbl = fg.breakLbl[:len(fg.breakLbl)-1]

	fg.emit(opcode.Opcode{Kind: opcode.Label, Str: ldone})
	fg.emit(opcode.Opcode{Kind: opcode.Consume})
}

func (fg *funcGen) returnStmt(st sem.ReturnStmt) {
	if st.Value == nil {
		fg.emit(opcode.Opcode{Kind: opcode.ReturnFalse})
		return
	}
	if lit, ok := st.Value.(sem.LiteralExpr); ok && lit.Value.Kind == ast.LiteralInt {
		switch lit.Value.Int {
		case 0:
			fg.emit(opcode.Opcode{Kind: opcode.ReturnFalse})
			return
		case 1:
			fg.emit(opcode.Opcode{Kind: opcode.ReturnTrue})
			return
		}
	}
	fg.expr(st.Value, rvalue)
	fg.emit(opcode.Opcode{Kind: opcode.Return})
}
