package opcode

// TextPool is satisfied by the code generator's text-pool writer: it
// assigns (and deduplicates) a byte offset for a string constant.
type TextPool interface {
	Offset(s string) (int, error)
}

// TextReader is the disassembly-side counterpart: it resolves a
// previously-written text-pool offset back to its string.
type TextReader interface {
	Text(offset int) (string, error)
}

// LabelSink receives label definitions and jump-site registrations
// while a function's opcodes are being assembled. The assembler
// package (internal/asm) owns the concrete backpatching state; this
// package only needs to talk to it through this interface.
type LabelSink interface {
	Label(name string, addr int) error
	Jump(name string, operandAddr int)
}

// LabelResolver is the disassembly-side counterpart: it interns a jump
// target address into a synthetic label name (e.g. "l0", "l1", ...),
// returning the same name for the same address every time.
type LabelResolver interface {
	Label(addr int) string
}

// Assembler packs one Opcode into its generation-specific byte form.
type Assembler interface {
	Encode(op Opcode, out []byte, labels LabelSink, text TextPool) ([]byte, error)
}

// Disassembler unpacks one opcode from a generation-specific byte
// stream, returning the address it started at.
type Disassembler interface {
	Decode(c *Cursor, labels LabelResolver, text TextReader) (addr int, op Opcode, err error)
}

// ForGeneration returns the Assembler+Disassembler pair for a Generation.
func ForGeneration(gen Generation) (Assembler, Disassembler) {
	switch gen {
	case V1:
		return v1Table{}, v1Table{}
	case V2:
		return v2Table{}, v2Table{}
	default:
		return v3Table{}, v3Table{}
	}
}
