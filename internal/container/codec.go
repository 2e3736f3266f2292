package container

import (
	"encoding/binary"
	"fmt"
)

// Magic is the fixed 3-byte-plus-padding magic number every generation's
// header begins with, stored little-endian as a u32.
const Magic uint32 = 0x626D63

// Revision identifies one generation's header revision constant.
type Revision uint32

const (
	RevisionV1 Revision = 0x20041125
	RevisionV2 Revision = 0x20061024
	RevisionV3 Revision = 0x20110819
)

// leWriter accumulates little-endian container bytes — the container's
// own header/pointer fields are little-endian in every generation, in
// contrast to internal/opcode's big-endian operand encoding.
type leWriter struct {
	buf []byte
}

func (w *leWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *leWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *leWriter) byte(v byte) { w.buf = append(w.buf, v) }

func (w *leWriter) bytes(v []byte) { w.buf = append(w.buf, v...) }

func (w *leWriter) padToWord() {
	for len(w.buf)%4 != 0 {
		w.buf = append(w.buf, 0)
	}
}

// patchU32 overwrites 4 bytes at offset with v, little-endian, once the
// final address is known.
func patchU32(buf []byte, offset int, v uint32) error {
	if offset+4 > len(buf) {
		return fmt.Errorf("container: patch offset %d out of bounds", offset)
	}
	binary.LittleEndian.PutUint32(buf[offset:], v)
	return nil
}

// leReader reads little-endian container bytes sequentially.
type leReader struct {
	data []byte
	pos  int
}

func newLEReader(data []byte) *leReader { return &leReader{data: data} }

func (r *leReader) seek(pos int) { r.pos = pos }

func (r *leReader) need(n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("container: unexpected end of data at offset %d", r.pos)
	}
	return nil
}

func (r *leReader) u8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *leReader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *leReader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}
