// Package asm owns label backpatching and address resolution for the
// assembler and disassembler: the stateful half of turning an Opcode
// stream into bytes and back that internal/opcode's per-generation
// tables delegate to through the LabelSink/LabelResolver interfaces.
package asm

import (
	"fmt"
	"sort"

	"exalt/internal/opcode"
)

// labelEntry tracks one label's resolved address (if defined yet) and
// every jump operand address that referenced it before it was defined.
type labelEntry struct {
	addr  int
	has   bool
	jumps []int
}

// LabelTable accumulates label definitions and jump-site registrations
// while a single function's opcodes are being encoded, then backpatches
// every jump operand's i16 displacement in one pass once the whole
// function has been emitted.
type LabelTable struct {
	labels map[string]*labelEntry
	order  []string
}

// NewLabelTable returns an empty table ready for one function's worth
// of assembly.
func NewLabelTable() *LabelTable {
	return &LabelTable{labels: make(map[string]*labelEntry)}
}

func (t *LabelTable) entry(name string) *labelEntry {
	e, ok := t.labels[name]
	if !ok {
		e = &labelEntry{}
		t.labels[name] = e
		t.order = append(t.order, name)
	}
	return e
}

// Label implements opcode.LabelSink: records addr as the definition
// site for name. Defining the same label twice is an error.
func (t *LabelTable) Label(name string, addr int) error {
	e := t.entry(name)
	if e.has {
		return fmt.Errorf("asm: duplicate entries for label %q", name)
	}
	e.addr = addr
	e.has = true
	return nil
}

// Jump implements opcode.LabelSink: records operandAddr as a jump
// displacement field that targets name, to be backpatched once name's
// address is known.
func (t *LabelTable) Jump(name string, operandAddr int) {
	e := t.entry(name)
	e.jumps = append(e.jumps, operandAddr)
}

// Backpatch writes every jump's i16 big-endian displacement into code,
// mirroring the reference codegen's single-pass backpatch: diff =
// label_addr - jump_operand_addr, in two's-complement 16-bit range.
// Returns an UnresolvedJumpError naming every label that was jumped to
// but never defined.
func (t *LabelTable) Backpatch(code []byte) error {
	var unresolved []string
	for _, name := range t.order {
		e := t.labels[name]
		if !e.has {
			if len(e.jumps) > 0 {
				unresolved = append(unresolved, name)
			}
			continue
		}
		for _, jumpAddr := range e.jumps {
			diff := int16(e.addr) - int16(jumpAddr)
			if jumpAddr+2 > len(code) {
				return fmt.Errorf("asm: jump operand at %d out of bounds", jumpAddr)
			}
			code[jumpAddr] = byte(diff >> 8)
			code[jumpAddr+1] = byte(diff)
		}
	}
	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return &opcode.UnresolvedJumpError{Labels: unresolved}
	}
	return nil
}

// Resolver is the disassembly-side counterpart: it interns jump target
// addresses into synthetic label names in first-encounter order ("l0",
// "l1", ...), so the same address always resolves to the same name.
type Resolver struct {
	labels    map[int]string
	nextLabel int
}

// NewResolver returns an empty resolver ready for one function's worth
// of disassembly.
func NewResolver() *Resolver {
	return &Resolver{labels: make(map[int]string)}
}

// Label implements opcode.LabelResolver.
func (r *Resolver) Label(addr int) string {
	if name, ok := r.labels[addr]; ok {
		return name
	}
	name := fmt.Sprintf("l%d", r.nextLabel)
	r.nextLabel++
	r.labels[addr] = name
	return name
}

// Labels returns every addr→name mapping discovered so far, for the
// second pass that splices synthetic Label opcodes back into the
// decoded instruction stream at their target addresses.
func (r *Resolver) Labels() map[int]string {
	out := make(map[int]string, len(r.labels))
	for k, v := range r.labels {
		out[k] = v
	}
	return out
}
