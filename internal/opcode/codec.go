package opcode

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Cursor reads big-endian operand bytes from a function's code section.
// All opcode operands are big-endian in every generation; only the
// container's pointer fields are little-endian (see internal/container).
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor wraps a function's raw code bytes for sequential decoding.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the number of bytes remaining.
func (c *Cursor) Len() int { return len(c.data) - c.pos }

func (c *Cursor) need(n int) error {
	if c.pos+n > len(c.data) {
		return fmt.Errorf("opcode: unexpected end of code section at offset %d", c.pos)
	}
	return nil
}

// ReadU8 reads one unsigned byte.
func (c *Cursor) ReadU8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

// ReadI8 reads one signed byte.
func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

// ReadU16 reads a big-endian u16.
func (c *Cursor) ReadU16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

// ReadI16 reads a big-endian i16.
func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

// ReadU32 reads a big-endian u32.
func (c *Cursor) ReadU32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// ReadI32 reads a big-endian i32.
func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

// ReadF32 reads a big-endian IEEE-754 float.
func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// writeByteOrShort mirrors write_byte_or_short: values <= 0x7F get the
// single-byte opcode form, larger values get the two-byte big-endian
// short form.
func writeByteOrShort(out []byte, value uint16, byteOp, shortOp byte) []byte {
	if value <= 0x7F {
		return append(out, byteOp, byte(value))
	}
	out = append(out, shortOp)
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], value)
	return append(out, buf[:]...)
}

// writeByteOrShortOrInt mirrors write_byte_or_short_or_int for text-pool
// offsets, which may need a full 32-bit form.
func writeByteOrShortOrInt(out []byte, value uint32, byteOp, shortOp, intOp byte) []byte {
	switch {
	case value <= 0x7F:
		return append(out, byteOp, byte(value))
	case value <= 0x7FFF:
		out = append(out, shortOp)
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], uint16(value))
		return append(out, buf[:]...)
	default:
		out = append(out, intOp)
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], value)
		return append(out, buf[:]...)
	}
}

// writeCallIDV2 encodes CallById for legacy V2 opcode tables (G2-G4):
// values <= 0x7F are a single byte; larger values set the high bit of
// a two-byte big-endian form combining via <<8 (see readCallIDV2).
func writeCallIDV2(out []byte, v int) []byte {
	if v <= 0x7F {
		return append(out, byte(v))
	}
	word := uint16(1<<15) | uint16(v)
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], word)
	return append(out, buf[:]...)
}

// writeCallIDV3 encodes CallById for the modern V3 opcode table
// (G5-G7). Same single-byte fast path as V2, but the two-byte form
// combines via <<7 instead of <<8 (see readCallIDV3) - a genuinely
// different, narrower variable-width scheme from legacy's.
func writeCallIDV3(out []byte, v int) []byte {
	if v <= 0x7F {
		return append(out, byte(v))
	}
	hi := byte(0x80 | ((v >> 7) & 0x7F))
	lo := byte(v & 0xFF)
	return append(out, hi, lo)
}

// writeInt mirrors the IntLoad compaction: i8/i16/i32 big-endian forms
// selected by magnitude.
func writeInt(out []byte, v int32, byteOp, shortOp, intOp byte) []byte {
	switch {
	case v >= -128 && v <= 127:
		return append(out, byteOp, byte(int8(v)))
	case v >= -32768 && v <= 32767:
		out = append(out, shortOp)
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], uint16(int16(v)))
		return append(out, buf[:]...)
	default:
		out = append(out, intOp)
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(v))
		return append(out, buf[:]...)
	}
}

func writeF32(out []byte, op byte, v float32) []byte {
	out = append(out, op)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(v))
	return append(out, buf[:]...)
}

// readCallIDV2 is the inverse of writeCallIDV2, used by legacy V1/V2
// disassembly (see decodeLegacyCommon's withV2Extensions branch).
// Ground-truthed against exalt-disassembler/src/code.rs's
// read_wii_opcode, byte 0x37.
func readCallIDV2(c *Cursor) (int, error) {
	b1, err := c.ReadU8()
	if err != nil {
		return 0, err
	}
	if b1&0b1000_0000 != 0 {
		b2, err := c.ReadU8()
		if err != nil {
			return 0, err
		}
		value := (uint16(b1&0b0111_1111) << 8) | uint16(b2)
		return int(value), nil
	}
	return int(b1), nil
}

// readCallIDV3 is the inverse of writeCallIDV3, used by modern V3
// disassembly. Ground-truthed against exalt-disassembler/src/code.rs's
// read_three_ds_opcode, byte 0x46 - a genuinely different two-byte
// combine rule from V2's (<<7, not <<8).
func readCallIDV3(c *Cursor) (int, error) {
	b1, err := c.ReadU8()
	if err != nil {
		return 0, err
	}
	if b1&0b1000_0000 != 0 {
		b2, err := c.ReadU8()
		if err != nil {
			return 0, err
		}
		value := (uint16(b1&0b0111_1111) << 7) | uint16(b2)
		return int(value), nil
	}
	return int(b1), nil
}
