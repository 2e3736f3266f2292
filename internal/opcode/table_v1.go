package opcode

import "fmt"

// v1Table is the legacy G1 (FE9) opcode↔byte mapping. It lacks Inc,
// Dec, Copy, ReturnFalse, ReturnTrue and Assign relative to v2Table;
// G1 scripts express increment/assignment with the older
// Dereference/CompleteAssign pair only.
type v1Table struct{}

func (v1Table) Encode(op Opcode, out []byte, labels LabelSink, text TextPool) ([]byte, error) {
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
	case GlobalVarLoad:
		return writeByteOrShort(out, op.FrameID, 0xD, 0xE), nil
	case GlobalArrLoad:
		return writeByteOrShort(out, op.FrameID, 0xF, 0x10), nil
	case GlobalPtrLoad:
		return writeByteOrShort(out, op.FrameID, 0x11, 0x12), nil
	case GlobalVarAddr:
		return writeByteOrShort(out, op.FrameID, 0x13, 0x14), nil
	case GlobalArrAddr:
		return writeByteOrShort(out, op.FrameID, 0x15, 0x16), nil
	case GlobalPtrAddr:
		return writeByteOrShort(out, op.FrameID, 0x17, 0x18), nil
	case IntLoad:
		return writeInt(out, op.Int, 0x19, 0x1A, 0x1B), nil
	case StrLoad:
		offset, err := text.Offset(op.Str)
		if err != nil {
			return out, err
		}
		return writeByteOrShortOrInt(out, uint32(offset), 0x1C, 0x1D, 0x1E), nil
	case Dereference:
		return append(out, 0x1F), nil
	case Consume:
		return append(out, 0x20), nil
	case CompleteAssign:
		return append(out, 0x21), nil
	case Add:
		return append(out, 0x22), nil
	case Subtract:
		return append(out, 0x23), nil
	case Multiply:
		return append(out, 0x24), nil
	case Divide:
		return append(out, 0x25), nil
	case Modulo:
		return append(out, 0x26), nil
	case IntNegate:
		return append(out, 0x27), nil
	case BinaryNot:
		return append(out, 0x28), nil
	case LogicalNot:
		return append(out, 0x29), nil
	case BinaryOr:
		return append(out, 0x2A), nil
	case BinaryAnd:
		return append(out, 0x2B), nil
	case Xor:
		return append(out, 0x2C), nil
	case LeftShift:
		return append(out, 0x2D), nil
	case RightShift:
		return append(out, 0x2E), nil
	case Equal:
		return append(out, 0x2F), nil
	case NotEqual:
		return append(out, 0x30), nil
	case LessThan:
		return append(out, 0x31), nil
	case LessThanEqualTo:
		return append(out, 0x32), nil
	case GreaterThan:
		return append(out, 0x33), nil
	case GreaterThanEqualTo:
		return append(out, 0x34), nil
	case StringEquals:
		return append(out, 0x35), nil
	case StringNotEquals:
		return append(out, 0x36), nil
	case CallById:
		// G1 call ids are single-byte only; no variable-width form.
		return append(out, 0x37, byte(op.CallID)), nil
	case CallByName:
		offset, err := text.Offset(op.Str)
		if err != nil {
			return out, err
		}
		out = append(out, 0x38)
		out = append(out, byte(offset>>8), byte(offset))
		return append(out, op.Arity), nil
	case Return:
		return append(out, 0x39), nil
	case Jump:
		labels.Jump(op.Str, addr+1)
		return append(out, 0x3A, 0, 0), nil
	case JumpNotZero:
		labels.Jump(op.Str, addr+1)
		return append(out, 0x3B, 0, 0), nil
	case Or:
		labels.Jump(op.Str, addr+1)
		return append(out, 0x3C, 0, 0), nil
	case JumpZero:
		labels.Jump(op.Str, addr+1)
		return append(out, 0x3D, 0, 0), nil
	case And:
		labels.Jump(op.Str, addr+1)
		return append(out, 0x3E, 0, 0), nil
	case Yield:
		return append(out, 0x3F), nil
	case Nop0x40:
		return append(out, 0x40), nil
	case Format:
		return append(out, 0x41, op.Arity), nil
	case Label:
		return out, labels.Label(op.Str, addr)
	default:
		return out, fmt.Errorf("opcode: unsupported G1 opcode %s", op.Kind.name())
	}
}

func (v1Table) Decode(c *Cursor, labels LabelResolver, text TextReader) (int, Opcode, error) {
	addr := c.Pos()
	b, err := c.ReadU8()
	if err != nil {
		return addr, Opcode{}, err
	}
	op, err := decodeLegacyCommon(b, addr, c, labels, text, false)
	if err != nil {
		return addr, Opcode{}, err
	}
	return addr, op, nil
}

// decodeLegacyCommon implements the byte table shared by G1 and G2-G4
// up to opcode 0x41; withV2Extensions enables the opcodes G1 lacks
// (0x42-0x47).
func decodeLegacyCommon(b byte, addr int, c *Cursor, labels LabelResolver, text TextReader, withV2Extensions bool) (Opcode, error) {
	readFrame := func(shortOp bool) (uint16, error) {
		if shortOp {
			return c.ReadU16()
		}
		v, err := c.ReadU8()
		return uint16(v), err
	}
	switch b {
	case 0x0:
		return Opcode{Kind: Done}, nil
	case 0x1, 0x2:
		v, err := readFrame(b == 0x2)
		return Opcode{Kind: VarLoad, FrameID: v}, err
	case 0x3, 0x4:
		v, err := readFrame(b == 0x4)
		return Opcode{Kind: ArrLoad, FrameID: v}, err
	case 0x5, 0x6:
		v, err := readFrame(b == 0x6)
		return Opcode{Kind: PtrLoad, FrameID: v}, err
	case 0x7, 0x8:
		v, err := readFrame(b == 0x8)
		return Opcode{Kind: VarAddr, FrameID: v}, err
	case 0x9, 0xA:
		v, err := readFrame(b == 0xA)
		return Opcode{Kind: ArrAddr, FrameID: v}, err
	case 0xB, 0xC:
		v, err := readFrame(b == 0xC)
		return Opcode{Kind: PtrAddr, FrameID: v}, err
	case 0xD, 0xE:
		v, err := readFrame(b == 0xE)
		return Opcode{Kind: GlobalVarLoad, FrameID: v}, err
	case 0xF, 0x10:
		v, err := readFrame(b == 0x10)
		return Opcode{Kind: GlobalArrLoad, FrameID: v}, err
	case 0x11, 0x12:
		v, err := readFrame(b == 0x12)
		return Opcode{Kind: GlobalPtrLoad, FrameID: v}, err
	case 0x13, 0x14:
		v, err := readFrame(b == 0x14)
		return Opcode{Kind: GlobalVarAddr, FrameID: v}, err
	case 0x15, 0x16:
		v, err := readFrame(b == 0x16)
		return Opcode{Kind: GlobalArrAddr, FrameID: v}, err
	case 0x17, 0x18:
		v, err := readFrame(b == 0x18)
		return Opcode{Kind: GlobalPtrAddr, FrameID: v}, err
	case 0x19:
		v, err := c.ReadI8()
		return Opcode{Kind: IntLoad, Int: int32(v)}, err
	case 0x1A:
		v, err := c.ReadI16()
		return Opcode{Kind: IntLoad, Int: int32(v)}, err
	case 0x1B:
		v, err := c.ReadI32()
		return Opcode{Kind: IntLoad, Int: v}, err
	case 0x1C:
		off, err := c.ReadU8()
		if err != nil {
			return Opcode{}, err
		}
		s, err := text.Text(int(off))
		return Opcode{Kind: StrLoad, Str: s}, err
	case 0x1D:
		off, err := c.ReadU16()
		if err != nil {
			return Opcode{}, err
		}
		s, err := text.Text(int(off))
		return Opcode{Kind: StrLoad, Str: s}, err
	case 0x1E:
		off, err := c.ReadU32()
		if err != nil {
			return Opcode{}, err
		}
		s, err := text.Text(int(off))
		return Opcode{Kind: StrLoad, Str: s}, err
	case 0x1F:
		return Opcode{Kind: Dereference}, nil
	case 0x20:
		return Opcode{Kind: Consume}, nil
	case 0x21:
		return Opcode{Kind: CompleteAssign}, nil
	case 0x22:
		return Opcode{Kind: Add}, nil
	case 0x23:
		return Opcode{Kind: Subtract}, nil
	case 0x24:
		return Opcode{Kind: Multiply}, nil
	case 0x25:
		return Opcode{Kind: Divide}, nil
	case 0x26:
		return Opcode{Kind: Modulo}, nil
	case 0x27:
		return Opcode{Kind: IntNegate}, nil
	case 0x28:
		return Opcode{Kind: BinaryNot}, nil
	case 0x29:
		return Opcode{Kind: LogicalNot}, nil
	case 0x2A:
		return Opcode{Kind: BinaryOr}, nil
	case 0x2B:
		return Opcode{Kind: BinaryAnd}, nil
	case 0x2C:
		return Opcode{Kind: Xor}, nil
	case 0x2D:
		return Opcode{Kind: LeftShift}, nil
	case 0x2E:
		return Opcode{Kind: RightShift}, nil
	case 0x2F:
		return Opcode{Kind: Equal}, nil
	case 0x30:
		return Opcode{Kind: NotEqual}, nil
	case 0x31:
		return Opcode{Kind: LessThan}, nil
	case 0x32:
		return Opcode{Kind: LessThanEqualTo}, nil
	case 0x33:
		return Opcode{Kind: GreaterThan}, nil
	case 0x34:
		return Opcode{Kind: GreaterThanEqualTo}, nil
	case 0x35:
		return Opcode{Kind: StringEquals}, nil
	case 0x36:
		return Opcode{Kind: StringNotEquals}, nil
	case 0x37:
		if withV2Extensions {
			id, err := readCallIDV2(c)
			return Opcode{Kind: CallById, CallID: id}, err
		}
		id, err := c.ReadU8()
		return Opcode{Kind: CallById, CallID: int(id)}, err
	case 0x38:
		off, err := c.ReadU16()
		if err != nil {
			return Opcode{}, err
		}
		s, err := text.Text(int(off))
		if err != nil {
			return Opcode{}, err
		}
		arity, err := c.ReadU8()
		return Opcode{Kind: CallByName, Str: s, Arity: arity}, err
	case 0x39:
		return Opcode{Kind: Return}, nil
	case 0x3A:
		return decodeLegacyJump(c, labels, addr, Jump)
	case 0x3B:
		return decodeLegacyJump(c, labels, addr, JumpNotZero)
	case 0x3C:
		return decodeLegacyJump(c, labels, addr, Or)
	case 0x3D:
		return decodeLegacyJump(c, labels, addr, JumpZero)
	case 0x3E:
		return decodeLegacyJump(c, labels, addr, And)
	case 0x3F:
		return Opcode{Kind: Yield}, nil
	case 0x40:
		return Opcode{Kind: Nop0x40}, nil
	case 0x41:
		arity, err := c.ReadU8()
		return Opcode{Kind: Format, Arity: arity}, err
	case 0x42:
		if withV2Extensions {
			return Opcode{Kind: Inc}, nil
		}
	case 0x43:
		if withV2Extensions {
			return Opcode{Kind: Dec}, nil
		}
	case 0x44:
		if withV2Extensions {
			return Opcode{Kind: Copy}, nil
		}
	case 0x45:
		if withV2Extensions {
			return Opcode{Kind: ReturnFalse}, nil
		}
	case 0x46:
		if withV2Extensions {
			return Opcode{Kind: ReturnTrue}, nil
		}
	case 0x47:
		if withV2Extensions {
			return Opcode{Kind: Assign}, nil
		}
	}
	return Opcode{}, &UnrecognizedOpcodeError{Byte: b, Addr: addr}
}

func decodeLegacyJump(c *Cursor, labels LabelResolver, addr int, kind Kind) (Opcode, error) {
	diff, err := c.ReadI16()
	if err != nil {
		return Opcode{}, err
	}
	// addr is the opcode byte's own address (captured before it was
	// read); the ground-truth formula is target = addr + diff + 1,
	// which is equivalent to operand_addr + diff since operand_addr
	// == addr + 1 and diff was computed relative to operand_addr
	// during assembly.
	target := addr + int(diff) + 1
	return Opcode{Kind: kind, Str: labels.Label(target)}, nil
}
