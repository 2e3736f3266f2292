package opcode

import "fmt"

// v3Table is the modern G5-G7 opcode↔byte mapping. The whole table is
// renumbered relative to legacy (e.g. Dereference moves from 0x1F to
// 0x20 because FloatLoad is inserted at 0x1F) and adds float-typed
// arithmetic/comparison opcodes, Fix/Float coercions and Exlcall. Its
// CallById encoding also differs from legacy's: the two-byte form
// combines via <<7 rather than legacy's <<8 (see readCallIDV3).
type v3Table struct{}

func (v3Table) Encode(op Opcode, out []byte, labels LabelSink, text TextPool) ([]byte, error) {
	addr := len(out)
	switch op.Kind {
	case Done:
		return append(out, 0x0), nil
	case VarLoad:
		return writeByteOrShort(out, op.FrameID, 0x1, 0x2), nil
	case ArrLoad:
		return writeByteOrShort(out, op.FrameID, 0x3, 0x4), nil
	case PtrLoad:
		return writeByteOrShort(out, op.FrameID, 0x5, 0x6), nil
	case VarAddr:
		return writeByteOrShort(out, op.FrameID, 0x7, 0x8), nil
	case ArrAddr:
		return writeByteOrShort(out, op.FrameID, 0x9, 0xA), nil
	case PtrAddr:
		return writeByteOrShort(out, op.FrameID, 0xB, 0xC), nil
	case IntLoad:
		return writeInt(out, op.Int, 0x19, 0x1A, 0x1B), nil
	case StrLoad:
		offset, err := text.Offset(op.Str)
		if err != nil {
			return out, err
		}
		return writeByteOrShortOrInt(out, uint32(offset), 0x1C, 0x1D, 0x1E), nil
	case FloatLoad:
		return writeF32(out, 0x1F, op.Float), nil
	case Dereference:
		return append(out, 0x20), nil
	case Consume:
		return append(out, 0x21), nil
	case CompleteAssign:
		return append(out, 0x23), nil
	case Fix:
		return append(out, 0x24), nil
	case Float:
		return append(out, 0x25), nil
	case Add:
		return append(out, 0x26), nil
	case FloatAdd:
		return append(out, 0x27), nil
	case Subtract:
		return append(out, 0x28), nil
	case FloatSubtract:
		return append(out, 0x29), nil
	case Multiply:
		return append(out, 0x2A), nil
	case FloatMultiply:
		return append(out, 0x2B), nil
	case Divide:
		return append(out, 0x2C), nil
	case FloatDivide:
		return append(out, 0x2D), nil
	case Modulo:
		return append(out, 0x2E), nil
	case IntNegate:
		return append(out, 0x2F), nil
	case FloatNegate:
		return append(out, 0x30), nil
	case BinaryNot:
		return append(out, 0x31), nil
	case LogicalNot:
		return append(out, 0x32), nil
	case BinaryOr:
		return append(out, 0x33), nil
	case BinaryAnd:
		return append(out, 0x34), nil
	case Xor:
		return append(out, 0x35), nil
	case LeftShift:
		return append(out, 0x36), nil
	case RightShift:
		return append(out, 0x37), nil
	case Equal:
		return append(out, 0x38), nil
	case FloatEqual:
		return append(out, 0x39), nil
	case Exlcall:
		return out, ErrExlcallUnimplemented
	case NotEqual:
		return append(out, 0x3B), nil
	case FloatNotEqual:
		return append(out, 0x3C), nil
	case Nop0x3D:
		return append(out, 0x3D), nil
	case LessThan:
		return append(out, 0x3E), nil
	case FloatLessThan:
		return append(out, 0x3F), nil
	case LessThanEqualTo:
		return append(out, 0x40), nil
	case FloatLessThanEqualTo:
		return append(out, 0x41), nil
	case GreaterThan:
		return append(out, 0x42), nil
	case FloatGreaterThan:
		return append(out, 0x43), nil
	case GreaterThanEqualTo:
		return append(out, 0x44), nil
	case FloatGreaterThanEqualTo:
		return append(out, 0x45), nil
	case CallById:
		out = append(out, 0x46)
		return writeCallIDV3(out, op.CallID), nil
	case CallByName:
		offset, err := text.Offset(op.Str)
		if err != nil {
			return out, err
		}
		out = append(out, 0x47, byte(offset>>8), byte(offset))
		return append(out, op.Arity), nil
	case Return:
		return append(out, 0x48), nil
	case Jump:
		labels.Jump(op.Str, addr+1)
		return append(out, 0x49, 0, 0), nil
	case JumpNotZero:
		labels.Jump(op.Str, addr+1)
		return append(out, 0x4A, 0, 0), nil
	case Or:
		labels.Jump(op.Str, addr+1)
		return append(out, 0x4B, 0, 0), nil
	case JumpZero:
		labels.Jump(op.Str, addr+1)
		return append(out, 0x4C, 0, 0), nil
	case And:
		labels.Jump(op.Str, addr+1)
		return append(out, 0x4D, 0, 0), nil
	case Yield:
		return append(out, 0x4E), nil
	case Format:
		return append(out, 0x50, op.Arity), nil
	case Inc:
		return append(out, 0x51), nil
	case Dec:
		return append(out, 0x52), nil
	case Copy:
		return append(out, 0x53), nil
	case ReturnFalse:
		return append(out, 0x54), nil
	case ReturnTrue:
		return append(out, 0x55), nil
	case Label:
		return out, labels.Label(op.Str, addr)
	default:
		return out, fmt.Errorf("opcode: unsupported modern opcode %s", op.Kind.name())
	}
}

func (v3Table) Decode(c *Cursor, labels LabelResolver, text TextReader) (int, Opcode, error) {
	addr := c.Pos()
	b, err := c.ReadU8()
	if err != nil {
		return addr, Opcode{}, err
	}
	readFrame := func(shortOp bool) (uint16, error) {
		if shortOp {
			return c.ReadU16()
		}
		v, err := c.ReadU8()
		return uint16(v), err
	}
	jump := func(kind Kind) (Opcode, error) {
		diff, err := c.ReadI16()
		if err != nil {
			return Opcode{}, err
		}
		target := addr + int(diff) + 1
		return Opcode{Kind: kind, Str: labels.Label(target)}, nil
	}
	var op Opcode
	switch b {
	case 0x0:
		op = Opcode{Kind: Done}
	case 0x1, 0x2:
		v, err := readFrame(b == 0x2)
		op, err = Opcode{Kind: VarLoad, FrameID: v}, err
		if err != nil {
			return addr, op, err
		}
	case 0x3, 0x4:
		v, err := readFrame(b == 0x4)
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: ArrLoad, FrameID: v}
	case 0x5, 0x6:
		v, err := readFrame(b == 0x6)
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: PtrLoad, FrameID: v}
	case 0x7, 0x8:
		v, err := readFrame(b == 0x8)
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: VarAddr, FrameID: v}
	case 0x9, 0xA:
		v, err := readFrame(b == 0xA)
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: ArrAddr, FrameID: v}
	case 0xB, 0xC:
		v, err := readFrame(b == 0xC)
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: PtrAddr, FrameID: v}
	case 0x19:
		v, err := c.ReadI8()
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: IntLoad, Int: int32(v)}
	case 0x1A:
		v, err := c.ReadI16()
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: IntLoad, Int: int32(v)}
	case 0x1B:
		v, err := c.ReadI32()
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: IntLoad, Int: v}
	case 0x1C:
		off, err := c.ReadU8()
		if err != nil {
			return addr, Opcode{}, err
		}
		s, err := text.Text(int(off))
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: StrLoad, Str: s}
	case 0x1D:
		off, err := c.ReadU16()
		if err != nil {
			return addr, Opcode{}, err
		}
		s, err := text.Text(int(off))
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: StrLoad, Str: s}
	case 0x1E:
		off, err := c.ReadU32()
		if err != nil {
			return addr, Opcode{}, err
		}
		s, err := text.Text(int(off))
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: StrLoad, Str: s}
	case 0x1F:
		v, err := c.ReadF32()
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: FloatLoad, Float: v}
	case 0x20:
		op = Opcode{Kind: Dereference}
	case 0x21:
		op = Opcode{Kind: Consume}
	case 0x23:
		op = Opcode{Kind: CompleteAssign}
	case 0x24:
		op = Opcode{Kind: Fix}
	case 0x25:
		op = Opcode{Kind: Float}
	case 0x26:
		op = Opcode{Kind: Add}
	case 0x27:
		op = Opcode{Kind: FloatAdd}
	case 0x28:
		op = Opcode{Kind: Subtract}
	case 0x29:
		op = Opcode{Kind: FloatSubtract}
	case 0x2A:
		op = Opcode{Kind: Multiply}
	case 0x2B:
		op = Opcode{Kind: FloatMultiply}
	case 0x2C:
		op = Opcode{Kind: Divide}
	case 0x2D:
		op = Opcode{Kind: FloatDivide}
	case 0x2E:
		op = Opcode{Kind: Modulo}
	case 0x2F:
		op = Opcode{Kind: IntNegate}
	case 0x30:
		op = Opcode{Kind: FloatNegate}
	case 0x31:
		op = Opcode{Kind: BinaryNot}
	case 0x32:
		op = Opcode{Kind: LogicalNot}
	case 0x33:
		op = Opcode{Kind: BinaryOr}
	case 0x34:
		op = Opcode{Kind: BinaryAnd}
	case 0x35:
		op = Opcode{Kind: Xor}
	case 0x36:
		op = Opcode{Kind: LeftShift}
	case 0x37:
		op = Opcode{Kind: RightShift}
	case 0x38:
		op = Opcode{Kind: Equal}
	case 0x39:
		op = Opcode{Kind: FloatEqual}
	case 0x3A:
		return addr, Opcode{}, ErrExlcallUnimplemented
	case 0x3B:
		op = Opcode{Kind: NotEqual}
	case 0x3C:
		op = Opcode{Kind: FloatNotEqual}
	case 0x3D:
		op = Opcode{Kind: Nop0x3D}
	case 0x3E:
		op = Opcode{Kind: LessThan}
	case 0x3F:
		op = Opcode{Kind: FloatLessThan}
	case 0x40:
		op = Opcode{Kind: LessThanEqualTo}
	case 0x41:
		op = Opcode{Kind: FloatLessThanEqualTo}
	case 0x42:
		op = Opcode{Kind: GreaterThan}
	case 0x43:
		op = Opcode{Kind: FloatGreaterThan}
	case 0x44:
		op = Opcode{Kind: GreaterThanEqualTo}
	case 0x45:
		op = Opcode{Kind: FloatGreaterThanEqualTo}
	case 0x46:
		id, err := readCallIDV3(c)
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: CallById, CallID: id}
	case 0x47:
		off, err := c.ReadU16()
		if err != nil {
			return addr, Opcode{}, err
		}
		s, err := text.Text(int(off))
		if err != nil {
			return addr, Opcode{}, err
		}
		arity, err := c.ReadU8()
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: CallByName, Str: s, Arity: arity}
	case 0x48:
		op = Opcode{Kind: Return}
	case 0x49:
		o, err := jump(Jump)
		if err != nil {
			return addr, Opcode{}, err
		}
		op = o
	case 0x4A:
		o, err := jump(JumpNotZero)
		if err != nil {
			return addr, Opcode{}, err
		}
		op = o
	case 0x4B:
		o, err := jump(Or)
		if err != nil {
			return addr, Opcode{}, err
		}
		op = o
	case 0x4C:
		o, err := jump(JumpZero)
		if err != nil {
			return addr, Opcode{}, err
		}
		op = o
	case 0x4D:
		o, err := jump(And)
		if err != nil {
			return addr, Opcode{}, err
		}
		op = o
	case 0x4E:
		op = Opcode{Kind: Yield}
	case 0x50:
		arity, err := c.ReadU8()
		if err != nil {
			return addr, Opcode{}, err
		}
		op = Opcode{Kind: Format, Arity: arity}
	case 0x51:
		op = Opcode{Kind: Inc}
	case 0x52:
		op = Opcode{Kind: Dec}
	case 0x53:
		op = Opcode{Kind: Copy}
	case 0x54:
		op = Opcode{Kind: ReturnFalse}
	case 0x55:
		op = Opcode{Kind: ReturnTrue}
	default:
		return addr, Opcode{}, &UnrecognizedOpcodeError{Byte: b, Addr: addr}
	}
	return addr, op, nil
}
