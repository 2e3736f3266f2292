package container

import (
	"fmt"
	"math"

	"exalt/internal/opcode"
)

func float32frombits(v uint32) float32 { return math.Float32frombits(v) }

// eventArgType is one slot in a known function-type's argument
// signature, used only for decoding: some games hard-code which
// argument slots are strings versus integers for built-in event
// functions, since the binary format itself only ever stores the raw
// word and gives no type tag.
type eventArgType int

const (
	eventInt eventArgType = iota
	eventFloat
	eventStr
)

// eventSignatures maps a function_type to its known argument shape.
// Only G2 (FE10) and G6 (FE14) ship a known signature table upstream;
// every other game's built-in event arguments cannot be decoded back
// into typed literals from the binary alone, so readFunctionArgs
// reports them as plain integers unless a signature is present, same
// as the reference reader's fallback path.
var eventSignatures = map[opcode.Game]map[byte][]eventArgType{
	opcode.G2: {
		0x4: {eventInt, eventInt, eventInt, eventInt, eventInt, eventStr},
		0x5: {eventInt, eventInt, eventInt, eventStr},
		0x8: {eventStr, eventStr, eventInt, eventStr},
		0x9: {eventStr, eventInt, eventInt, eventStr},
		0xE: {eventStr, eventStr},
	},
	opcode.G6: {
		0x10: {eventInt, eventInt, eventInt},
		0x11: {eventInt, eventInt, eventInt},
		0x12: {eventInt, eventInt, eventInt},
		0x13: {eventInt, eventInt, eventInt},
		0x14: {eventInt, eventInt, eventInt, eventInt, eventInt, eventStr},
		0x15: {eventInt, eventInt, eventInt, eventInt, eventInt, eventInt, eventInt, eventStr},
		0x17: {eventInt, eventStr, eventInt, eventInt, eventStr},
		0x1C: {eventStr, eventInt},
		0x1E: {eventStr},
		0x1F: {eventStr},
		0x20: {eventStr, eventInt},
	},
}

// readFunctionArgsLegacy decodes a V1/V2 function's declared arguments:
// 2-byte little-endian words, typed by a known signature when one
// exists for game+functionType, otherwise treated as plain integers.
func readFunctionArgsLegacy(r *leReader, text *TextReader, game opcode.Game, functionType byte, paramCount int) ([]EventArg, error) {
	sig, hasSig := eventSignatures[game][functionType]
	if hasSig && len(sig) != paramCount {
		return nil, fmt.Errorf("container: known signature and function header disagree on arity")
	}
	args := make([]EventArg, 0, paramCount)
	for i := 0; i < paramCount; i++ {
		raw, err := r.u16()
		if err != nil {
			return nil, err
		}
		if !hasSig {
			args = append(args, EventArg{Kind: ArgInt, Int: int32(int16(raw))})
			continue
		}
		switch sig[i] {
		case eventStr:
			s, err := text.Text(int(raw))
			if err != nil {
				return nil, err
			}
			args = append(args, EventArg{Kind: ArgStr, Str: s})
		case eventInt:
			args = append(args, EventArg{Kind: ArgInt, Int: int32(raw)})
		default:
			return nil, fmt.Errorf("container: unsupported arg type in legacy signature")
		}
	}
	return args, nil
}

// readFunctionArgsModern is the V3 counterpart: 4-byte little-endian
// words, with float-typed slots possible in a known signature.
func readFunctionArgsModern(r *leReader, text *TextReader, game opcode.Game, functionType byte, paramCount int) ([]EventArg, error) {
	sig, hasSig := eventSignatures[game][functionType]
	if hasSig && len(sig) != paramCount {
		return nil, fmt.Errorf("container: known signature and function header disagree on arity")
	}
	args := make([]EventArg, 0, paramCount)
	for i := 0; i < paramCount; i++ {
		if !hasSig {
			raw, err := r.u32()
			if err != nil {
				return nil, err
			}
			args = append(args, EventArg{Kind: ArgInt, Int: int32(raw)})
			continue
		}
		switch sig[i] {
		case eventStr:
			raw, err := r.u32()
			if err != nil {
				return nil, err
			}
			s, err := text.Text(int(raw))
			if err != nil {
				return nil, err
			}
			args = append(args, EventArg{Kind: ArgStr, Str: s})
		case eventInt:
			raw, err := r.u32()
			if err != nil {
				return nil, err
			}
			args = append(args, EventArg{Kind: ArgInt, Int: int32(raw)})
		case eventFloat:
			raw, err := r.u32()
			if err != nil {
				return nil, err
			}
			args = append(args, EventArg{Kind: ArgFloat, Float: float32frombits(raw)})
		}
	}
	return args, nil
}
