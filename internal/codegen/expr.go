package codegen

import (
	"exalt/internal/ast"
	"exalt/internal/opcode"
	"exalt/internal/sem"
)

// category is an expression's value category: lvalue positions (LHS
// of assignment, operand of AddressOf) want an address pushed,
// everywhere else wants the value itself.
type category int

const (
	rvalue category = iota
	lvalue
)

func (fg *funcGen) expr(e sem.Expr, cat category) {
	switch ex := e.(type) {
	case sem.ArrayExpr:
		fg.arrayInit(ex.Init)
	case sem.LiteralExpr:
		fg.literal(ex.Value)
	case sem.GroupedExpr:
		fg.expr(ex.Inner, cat)
	case sem.UnaryExpr:
		fg.unary(ex)
	case sem.BinaryExpr:
		fg.binary(ex)
	case sem.FunctionCallExpr:
		fg.call(ex)
	case sem.RefExpr:
		fg.ref(ex.Ref, cat)
	case sem.IncrementExpr:
		fg.increment(ex)
	case sem.AddressOfExpr:
		fg.ref(ex.Ref, lvalue)
	}
}

func (fg *funcGen) literal(lit ast.Literal) {
	switch lit.Kind {
	case ast.LiteralInt:
		fg.emit(opcode.Opcode{Kind: opcode.IntLoad, Int: lit.Int})
	case ast.LiteralFloat:
		fg.emit(opcode.Opcode{Kind: opcode.FloatLoad, Float: lit.Float})
	case ast.LiteralStr:
		fg.emit(opcode.Opcode{Kind: opcode.StrLoad, Str: lit.Str})
	}
}

func (fg *funcGen) arrayInit(init sem.ArrayInit) {
	switch in := init.(type) {
	case sem.EmptyArrayInit:
		fg.emit(opcode.Opcode{Kind: opcode.IntLoad, Int: int32(in.Size)})
	case sem.StaticArrayInit:
		for _, el := range in.Elements {
			fg.expr(el, rvalue)
		}
	}
}

// ref emits either an address-load (cat == lvalue) or a value-load
// (cat == rvalue) for a resolved l-value, picking the Var/Arr/Ptr and
// Global* opcode variant by symbol shape.
func (fg *funcGen) ref(r sem.Ref, cat category) {
	switch rf := r.(type) {
	case sem.VarRef:
		id := fg.resolveID(rf.Symbol)
		fg.emit(opcode.Opcode{Kind: varKind(rf.Symbol, cat), FrameID: id})
	case sem.IndexRef:
		fg.expr(rf.Index, rvalue)
		id := fg.resolveID(rf.Symbol)
		fg.emit(opcode.Opcode{Kind: arrKind(rf.Symbol, cat), FrameID: id})
	case sem.DereferenceRef:
		id := fg.resolveID(rf.Symbol)
		if rf.Offset != nil {
			fg.expr(rf.Offset, rvalue)
		} else {
			fg.emit(opcode.Opcode{Kind: opcode.IntLoad, Int: 0})
		}
		fg.emit(opcode.Opcode{Kind: ptrKind(rf.Symbol, cat), FrameID: id})
	}
}

func (fg *funcGen) resolveID(sym *sem.VarSymbol) uint16 {
	if sym.Global {
		return uint16(sym.FrameID)
	}
	return uint16(fg.frame.id(sym))
}

func varKind(sym *sem.VarSymbol, cat category) opcode.Kind {
	switch {
	case sym.Global && cat == rvalue:
		return opcode.GlobalVarLoad
	case sym.Global && cat == lvalue:
		return opcode.GlobalVarAddr
	case cat == rvalue:
		return opcode.VarLoad
	default:
		return opcode.VarAddr
	}
}

func arrKind(sym *sem.VarSymbol, cat category) opcode.Kind {
	switch {
	case sym.Global && cat == rvalue:
		return opcode.GlobalArrLoad
	case sym.Global && cat == lvalue:
		return opcode.GlobalArrAddr
	case cat == rvalue:
		return opcode.ArrLoad
	default:
		return opcode.ArrAddr
	}
}

func ptrKind(sym *sem.VarSymbol, cat category) opcode.Kind {
	switch {
	case sym.Global && cat == rvalue:
		return opcode.GlobalPtrLoad
	case sym.Global && cat == lvalue:
		return opcode.GlobalPtrAddr
	case cat == rvalue:
		return opcode.PtrLoad
	default:
		return opcode.PtrAddr
	}
}

func (fg *funcGen) unary(ex sem.UnaryExpr) {
	fg.expr(ex.Operand, rvalue)
	switch ex.Op {
	case ast.OpNegate:
		fg.emit(opcode.Opcode{Kind: opcode.IntNegate})
	case ast.OpFloatNegate:
		fg.emit(opcode.Opcode{Kind: opcode.FloatNegate})
	case ast.OpLogicalNot:
		fg.emit(opcode.Opcode{Kind: opcode.LogicalNot})
	case ast.OpBitwiseNot:
		fg.emit(opcode.Opcode{Kind: opcode.BinaryNot})
	}
}

func (fg *funcGen) binary(ex sem.BinaryExpr) {
	if ex.Op == ast.OpLogicalAnd || ex.Op == ast.OpLogicalOr {
		lend := fg.newLabel()
		fg.expr(ex.Left, rvalue)
		if ex.Op == ast.OpLogicalAnd {
			fg.emit(opcode.Opcode{Kind: opcode.And, Str: lend})
		} else {
			fg.emit(opcode.Opcode{Kind: opcode.Or, Str: lend})
		}
		fg.expr(ex.Right, rvalue)
		fg.emit(opcode.Opcode{Kind: opcode.Label, Str: lend})
		return
	}
	fg.expr(ex.Left, rvalue)
	fg.expr(ex.Right, rvalue)
	fg.emit(binaryOpcode(ex.Op))
}

func binaryOpcode(op ast.Operator) opcode.Opcode {
	switch op {
	case ast.OpAdd:
		return opcode.Opcode{Kind: opcode.Add}
	case ast.OpFloatAdd:
		return opcode.Opcode{Kind: opcode.FloatAdd}
	case ast.OpSubtract:
		return opcode.Opcode{Kind: opcode.Subtract}
	case ast.OpFloatSubtract:
		return opcode.Opcode{Kind: opcode.FloatSubtract}
	case ast.OpMultiply:
		return opcode.Opcode{Kind: opcode.Multiply}
	case ast.OpFloatMultiply:
		return opcode.Opcode{Kind: opcode.FloatMultiply}
	case ast.OpDivide:
		return opcode.Opcode{Kind: opcode.Divide}
	case ast.OpFloatDivide:
		return opcode.Opcode{Kind: opcode.FloatDivide}
	case ast.OpModulo:
		return opcode.Opcode{Kind: opcode.Modulo}
	case ast.OpBitwiseAnd:
		return opcode.Opcode{Kind: opcode.BinaryAnd}
	case ast.OpBitwiseOr:
		return opcode.Opcode{Kind: opcode.BinaryOr}
	case ast.OpXor:
		return opcode.Opcode{Kind: opcode.Xor}
	case ast.OpLeftShift:
		return opcode.Opcode{Kind: opcode.LeftShift}
	case ast.OpRightShift:
		return opcode.Opcode{Kind: opcode.RightShift}
	case ast.OpEqual:
		return opcode.Opcode{Kind: opcode.Equal}
	case ast.OpFloatEqual:
		return opcode.Opcode{Kind: opcode.FloatEqual}
	case ast.OpNotEqual:
		return opcode.Opcode{Kind: opcode.NotEqual}
	case ast.OpFloatNotEqual:
		return opcode.Opcode{Kind: opcode.FloatNotEqual}
	case ast.OpLessThan:
		return opcode.Opcode{Kind: opcode.LessThan}
	case ast.OpFloatLessThan:
		return opcode.Opcode{Kind: opcode.FloatLessThan}
	case ast.OpLessThanEqualTo:
		return opcode.Opcode{Kind: opcode.LessThanEqualTo}
	case ast.OpFloatLessThanEqualTo:
		return opcode.Opcode{Kind: opcode.FloatLessThanEqualTo}
	case ast.OpGreaterThan:
		return opcode.Opcode{Kind: opcode.GreaterThan}
	case ast.OpFloatGreaterThan:
		return opcode.Opcode{Kind: opcode.FloatGreaterThan}
	case ast.OpGreaterThanEqualTo:
		return opcode.Opcode{Kind: opcode.GreaterThanEqualTo}
	case ast.OpFloatGreaterThanEqualTo:
		return opcode.Opcode{Kind: opcode.FloatGreaterThanEqualTo}
	default:
		return opcode.Opcode{Kind: opcode.Nop0x3D}
	}
}

func (fg *funcGen) call(ex sem.FunctionCallExpr) {
	if kind, ok := intrinsics[ex.Symbol.Name]; ok {
		for _, arg := range ex.Args {
			fg.expr(arg, rvalue)
		}
		fg.emit(opcode.Opcode{Kind: kind})
		return
	}
	for _, arg := range ex.Args {
		fg.expr(arg, rvalue)
	}
	if id, ok := fg.g.callIDs[ex.Symbol.Name]; ok {
		fg.emit(opcode.Opcode{Kind: opcode.CallById, CallID: id})
		return
	}
	fg.emit(opcode.Opcode{Kind: opcode.CallByName, Str: ex.Symbol.Name, Arity: uint8(len(ex.Args))})
}

// increment lowers ++/-- in both notations. Postfix pushes the old
// rvalue first (what the expression evaluates to), then the address,
// then Inc/Dec, leaving the old value as the expression's result.
// Prefix pushes the address and performs Inc/Dec first, then re-reads
// the updated value so the expression evaluates to the new one.
func (fg *funcGen) increment(ex sem.IncrementExpr) {
	op := opcode.Inc
	if ex.Op == ast.OpDecrement {
		op = opcode.Dec
	}
	if ex.Notation == ast.Postfix {
		fg.ref(ex.Ref, rvalue)
		fg.ref(ex.Ref, lvalue)
		fg.emit(opcode.Opcode{Kind: op})
		return
	}
	fg.ref(ex.Ref, lvalue)
	fg.emit(opcode.Opcode{Kind: op})
	fg.ref(ex.Ref, rvalue)
}
