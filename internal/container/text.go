package container

import (
	"fmt"

	"golang.org/x/text/encoding/japanese"
)

// EncodeShiftJIS converts text to its null-terminator-free Shift-JIS
// byte form for storage in a script's text pool.
func EncodeShiftJIS(text string) ([]byte, error) {
	out, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("container: failed to encode %q as shift-jis: %w", text, err)
	}
	return out, nil
}

// ReadShiftJISString decodes a null-terminated Shift-JIS string out of
// data starting at start, matching the reference read_shift_jis_string:
// an out-of-bounds start is an error, an empty run is the empty string.
func ReadShiftJISString(data []byte, start int) (string, error) {
	if start > len(data) {
		return "", fmt.Errorf("container: out of bounds text pointer at %d", start)
	}
	end := start
	for end < len(data) && data[end] != 0 {
		end++
	}
	if start == end {
		return "", nil
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(data[start:end])
	if err != nil {
		return "", fmt.Errorf("container: malformed shift-jis sequence at 0x%X: %w", start, err)
	}
	return string(out), nil
}

// TextStrategy selects how a script's text pool is built during
// encoding: most games dedup and append text in first-use order, but a
// hard-coded pool (reused wholesale from a prior decompile) pins every
// offset up front and rejects any string not already present.
type TextStrategy int

const (
	// Dynamic builds the pool incrementally, deduplicating by string
	// value and assigning offsets in first-use order.
	Dynamic TextStrategy = iota
	// HardCoded uses a caller-supplied offset map and never appends.
	HardCoded
)

// TextPool accumulates a script's Shift-JIS text blob during encoding
// and implements opcode.TextPool for the assembler tables.
type TextPool struct {
	strategy TextStrategy
	raw      []byte
	offsets  map[string]int
}

// NewTextPool returns an empty pool using the Dynamic strategy.
func NewTextPool() *TextPool {
	return &TextPool{strategy: Dynamic, offsets: make(map[string]int)}
}

// NewHardCodedTextPool wraps a pre-built text blob and offset map,
// rejecting any string not already present in offsets.
func NewHardCodedTextPool(raw []byte, offsets map[string]int) *TextPool {
	return &TextPool{strategy: HardCoded, raw: raw, offsets: offsets}
}

// Offset implements opcode.TextPool.
func (p *TextPool) Offset(s string) (int, error) {
	if off, ok := p.offsets[s]; ok {
		return off, nil
	}
	if p.strategy == HardCoded {
		return 0, fmt.Errorf("container: %q does not exist in hard-coded text data", s)
	}
	encoded, err := EncodeShiftJIS(s)
	if err != nil {
		return 0, err
	}
	offset := len(p.raw)
	p.raw = append(p.raw, encoded...)
	p.raw = append(p.raw, 0)
	p.offsets[s] = offset
	return offset, nil
}

// Bytes returns the accumulated text blob.
func (p *TextPool) Bytes() []byte { return p.raw }

// TextReader resolves previously-written text-pool offsets back to
// strings during decoding; it implements opcode.TextReader.
type TextReader struct {
	data []byte
}

// NewTextReader wraps a script's raw text section.
func NewTextReader(data []byte) *TextReader { return &TextReader{data: data} }

// Text implements opcode.TextReader.
func (r *TextReader) Text(offset int) (string, error) {
	return ReadShiftJISString(r.data, offset)
}
