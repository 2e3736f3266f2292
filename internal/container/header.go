package container

import (
	"fmt"

	"exalt/internal/opcode"
)

// layout captures the handful of generation-specific constants that
// differ between the legacy (G1-G4) and modern (G5-G7) container
// shapes: where the text/event pointers live in the header, and
// whether text precedes or follows the function table, and whether the
// last function's code gets word-padding.
type layout struct {
	revision              Revision
	eventTablePointerAddr int
	textDataPointerAddr   int
	textFirst             bool
	padLastFunction       bool
}

func layoutFor(gen opcode.Generation) layout {
	switch gen {
	case opcode.V1:
		return layout{revision: RevisionV1, eventTablePointerAddr: 0x28, textDataPointerAddr: 0x24, textFirst: true, padLastFunction: true}
	case opcode.V2:
		return layout{revision: RevisionV2, eventTablePointerAddr: 0x28, textDataPointerAddr: 0x24, textFirst: true, padLastFunction: true}
	default:
		return layout{revision: RevisionV3, eventTablePointerAddr: 0x1C, textDataPointerAddr: 0x20, textFirst: false, padLastFunction: false}
	}
}

// buildHeader constructs the fixed-size header prefix for gen, with the
// text/event pointer fields left as zero placeholders to be patched in
// by buildImage once the section addresses are known. The legacy
// (V1/V2) header packs the script name directly into a 0x13-byte field;
// the modern (V3) header instead stores the name after the fixed
// fields, pointed to at a fixed 0x28 offset.
func buildHeader(gen opcode.Generation, scriptName string, scriptType uint32) ([]byte, error) {
	l := layoutFor(gen)
	nameBytes, err := EncodeShiftJIS(scriptName)
	if err != nil {
		return nil, err
	}

	if gen != opcode.V3 {
		if len(nameBytes) > 0x13 {
			return nil, fmt.Errorf("container: script name %q is too long for this format", scriptName)
		}
		w := &leWriter{}
		w.u32(Magic)
		w.bytes(nameBytes)
		for len(w.buf) < 0x18 {
			w.byte(0)
		}
		w.u32(uint32(l.revision))
		for i := 0; i < 6; i++ {
			w.byte(0)
		}
		w.u16(uint16(scriptType))
		for i := 0; i < 8; i++ {
			w.byte(0)
		}
		return w.buf, nil
	}

	w := &leWriter{}
	w.u32(Magic)
	w.u32(uint32(l.revision))
	w.u32(0)
	w.u32(0x28) // name pointer, always 0x28 for V3
	for len(w.buf) < 0x24 {
		w.byte(0)
	}
	w.u32(scriptType)
	w.bytes(nameBytes)
	w.byte(0)
	w.padToWord()
	return w.buf, nil
}

// cmbHeader is the parsed form of a container's fixed header fields.
type cmbHeader struct {
	magic             uint32
	revision          uint32
	scriptType        uint32
	functionTableAddr uint32
	textDataAddr      uint32
}

func validateHeader(h cmbHeader, expected Revision) error {
	if h.magic != Magic {
		return fmt.Errorf("container: bad magic number 0x%X", h.magic)
	}
	if Revision(h.revision) != expected {
		return fmt.Errorf("container: unsupported revision 0x%X", h.revision)
	}
	return nil
}

// parseHeader reads the fixed header fields for gen out of data.
func parseHeader(gen opcode.Generation, data []byte) (cmbHeader, error) {
	l := layoutFor(gen)
	r := newLEReader(data)
	if gen != opcode.V3 {
		magic, err := r.u32()
		if err != nil {
			return cmbHeader{}, err
		}
		r.seek(0x18)
		revision, err := r.u32()
		if err != nil {
			return cmbHeader{}, err
		}
		r.seek(0x22)
		scriptType, err := r.u16()
		if err != nil {
			return cmbHeader{}, err
		}
		textAddr, err := r.u32()
		if err != nil {
			return cmbHeader{}, err
		}
		funcAddr, err := r.u32()
		if err != nil {
			return cmbHeader{}, err
		}
		h := cmbHeader{magic: magic, revision: revision, scriptType: uint32(scriptType), textDataAddr: textAddr, functionTableAddr: funcAddr}
		return h, validateHeader(h, l.revision)
	}

	magic, err := r.u32()
	if err != nil {
		return cmbHeader{}, err
	}
	revision, err := r.u32()
	if err != nil {
		return cmbHeader{}, err
	}
	r.seek(0x1C)
	funcAddr, err := r.u32()
	if err != nil {
		return cmbHeader{}, err
	}
	textAddr, err := r.u32()
	if err != nil {
		return cmbHeader{}, err
	}
	scriptType, err := r.u16()
	if err != nil {
		return cmbHeader{}, err
	}
	h := cmbHeader{magic: magic, revision: revision, scriptType: uint32(scriptType), functionTableAddr: funcAddr, textDataAddr: textAddr}
	return h, validateHeader(h, l.revision)
}
