package opcode

// v2Table is the legacy G2-G4 opcode↔byte mapping: v1Table's table
// plus Inc, Dec, Copy, ReturnFalse, ReturnTrue, Assign at 0x42-0x47,
// and a variable-width CallById encoding instead of v1's single byte.
type v2Table struct{}

func (v2Table) Encode(op Opcode, out []byte, labels LabelSink, text TextPool) ([]byte, error) {
	addr := len(out)
	switch op.Kind {
	case CallById:
		out = append(out, 0x37)
		return writeCallIDV2(out, op.CallID), nil
	case Inc:
		return append(out, 0x42), nil
	case Dec:
		return append(out, 0x43), nil
	case Copy:
		return append(out, 0x44), nil
	case ReturnFalse:
		return append(out, 0x45), nil
	case ReturnTrue:
		return append(out, 0x46), nil
	case Assign:
		return append(out, 0x47), nil
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
	case Label:
		return out, labels.Label(op.Str, addr)
	default:
		return (v1Table{}).Encode(op, out, labels, text)
	}
}

func (v2Table) Decode(c *Cursor, labels LabelResolver, text TextReader) (int, Opcode, error) {
	addr := c.Pos()
	b, err := c.ReadU8()
	if err != nil {
		return addr, Opcode{}, err
	}
	op, err := decodeLegacyCommon(b, addr, c, labels, text, true)
	if err != nil {
		return addr, Opcode{}, err
	}
	return addr, op, nil
}
