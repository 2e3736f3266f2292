package container

import (
	"fmt"
	"math"

	"exalt/internal/asm"
	"exalt/internal/opcode"
)

const (
	legacyFunctionHeaderSize = 0x14
	modernFunctionHeaderSize = 0x18
)

// serializeArgsLegacy packs a function's declared arguments in the
// V1/V2 form: each argument is a 2-byte little-endian word (a text-pool
// offset for strings, the literal value for ints), word-padded at the
// end. Float arguments and any arguments at all on function_type 0 are
// rejected.
func serializeArgsLegacy(fn FunctionData, text *TextPool) ([]byte, error) {
	if fn.FunctionType == 0 && len(fn.Args) > 0 {
		return nil, fmt.Errorf("container: function/event arguments cannot be used with function type 0")
	}
	w := &leWriter{}
	for _, arg := range fn.Args {
		switch arg.Kind {
		case ArgStr:
			offset, err := text.Offset(arg.Str)
			if err != nil {
				return nil, err
			}
			w.u16(uint16(offset))
		case ArgInt:
			w.u16(uint16(arg.Int))
		default:
			return nil, fmt.Errorf("container: this script format does not support float arguments")
		}
	}
	w.padToWord()
	return w.buf, nil
}

// serializeArgsModern packs a function's declared arguments in the V3
// form: each argument is a full 4-byte little-endian word, no padding
// needed since every argument is already word-sized.
func serializeArgsModern(fn FunctionData, text *TextPool) ([]byte, error) {
	if fn.FunctionType == 0 && len(fn.Args) > 0 {
		return nil, fmt.Errorf("container: function/event arguments cannot be used with function type 0")
	}
	w := &leWriter{}
	for _, arg := range fn.Args {
		switch arg.Kind {
		case ArgStr:
			offset, err := text.Offset(arg.Str)
			if err != nil {
				return nil, err
			}
			w.u32(uint32(offset))
		case ArgInt:
			w.u32(uint32(arg.Int))
		case ArgFloat:
			w.u32(math.Float32bits(arg.Float))
		}
	}
	return w.buf, nil
}

func u32ptr(v uint32) *uint32 { return &v }

// toRawFunctionLegacy assembles one function's code and lays out its
// name/args/code offsets relative to its own (not-yet-known) base
// address, for the V1/V2 container shape.
func toRawFunctionLegacy(fn FunctionData, gen opcode.Generation, text *TextPool) (rawFunctionData, error) {
	var nameBytes []byte
	if fn.Name != nil {
		encoded, err := EncodeShiftJIS(*fn.Name)
		if err != nil {
			return rawFunctionData{}, err
		}
		nameBytes = append(encoded, 0)
		for (len(nameBytes)+len(fn.UnknownPrefix))%4 != 0 {
			nameBytes = append(nameBytes, 0)
		}
	}

	argBytes, err := serializeArgsLegacy(fn, text)
	if err != nil {
		return rawFunctionData{}, fmt.Errorf("failed to write function arguments: %w", err)
	}

	var codeAddress uint32
	var nameAddress *uint32
	if len(nameBytes) == 0 {
		codeAddress = uint32(legacyFunctionHeaderSize + len(argBytes) + len(fn.UnknownPrefix))
	} else {
		codeAddress = uint32(legacyFunctionHeaderSize + len(nameBytes) + len(fn.UnknownPrefix))
		nameAddress = u32ptr(legacyFunctionHeaderSize)
	}

	header := rawFunctionHeader{
		nameAddress:   nameAddress,
		codeAddress:   codeAddress,
		frameSize:     uint16(fn.FrameSize),
		functionType:  fn.FunctionType,
		arity:         fn.Arity,
		paramCount:    byte(len(fn.Args)),
		unknown:       fn.Unknown,
		unknownPrefix: fn.UnknownPrefix,
		unknownSuffix: fn.UnknownSuffix,
	}

	code, err := assembleCode(fn.Code, gen, text)
	if err != nil {
		return rawFunctionData{}, err
	}

	return rawFunctionData{header: header, name: nameBytes, args: argBytes, code: code}, nil
}

// toRawFunctionModern is the V3 counterpart: it only emits a name when
// the function is a type-0 (top-level) function with a "::"-qualified
// name, and derives args_address only for non-type-0 functions.
func toRawFunctionModern(fn FunctionData, text *TextPool) (rawFunctionData, error) {
	var nameBytes []byte
	if fn.Name != nil && fn.FunctionType == 0 && containsNamespace(*fn.Name) {
		encoded, err := EncodeShiftJIS(*fn.Name)
		if err != nil {
			return rawFunctionData{}, err
		}
		nameBytes = append(encoded, 0)
	}

	argBytes, err := serializeArgsModern(fn, text)
	if err != nil {
		return rawFunctionData{}, fmt.Errorf("failed to write function arguments: %w", err)
	}

	var codeAddress uint32
	var nameAddress *uint32
	if len(nameBytes) == 0 {
		codeAddress = modernFunctionHeaderSize + uint32(len(argBytes))
	} else {
		codeAddress = modernFunctionHeaderSize + uint32(len(nameBytes))
		nameAddress = u32ptr(modernFunctionHeaderSize)
	}
	var argsAddress *uint32
	if fn.FunctionType != 0 {
		argsAddress = u32ptr(modernFunctionHeaderSize)
	}

	header := rawFunctionHeader{
		nameAddress:  nameAddress,
		codeAddress:  codeAddress,
		argsAddress:  argsAddress,
		frameSize:    uint16(fn.FrameSize),
		functionType: fn.FunctionType,
		arity:        fn.Arity,
		paramCount:   byte(len(fn.Args)),
	}

	code, err := assembleCode(fn.Code, opcode.V3, text)
	if err != nil {
		return rawFunctionData{}, err
	}

	return rawFunctionData{header: header, name: nameBytes, args: argBytes, code: code}, nil
}

func containsNamespace(name string) bool {
	for i := 0; i+1 < len(name); i++ {
		if name[i] == ':' && name[i+1] == ':' {
			return true
		}
	}
	return false
}

// assembleCode lowers a function's opcode stream to bytes for gen,
// appending the mandatory trailing Done byte and running the label
// backpatch pass.
func assembleCode(ops []opcode.Opcode, gen opcode.Generation, text *TextPool) ([]byte, error) {
	assembler, _ := opcode.ForGeneration(gen)
	labels := asm.NewLabelTable()
	var code []byte
	var err error
	for _, op := range ops {
		code, err = assembler.Encode(op, code, labels, text)
		if err != nil {
			return nil, fmt.Errorf("failed to encode opcode %s: %w", op, err)
		}
	}
	code = append(code, 0) // trailing Done
	if err := labels.Backpatch(code); err != nil {
		return nil, err
	}
	return code, nil
}

// serializeFunctionLegacy writes one function's final bytes once its
// base address in the image is known, biasing every header address
// field by baseAddress.
func serializeFunctionLegacy(fn rawFunctionData, functionID uint32, baseAddress uint32) []byte {
	h := fn.header
	w := &leWriter{}
	if h.nameAddress != nil {
		w.u32(*h.nameAddress + baseAddress)
	} else {
		w.u32(0)
	}
	w.u32(h.codeAddress + baseAddress)
	if h.parentAddress != nil {
		w.u32(*h.parentAddress + baseAddress)
	} else {
		w.u32(0)
	}
	w.byte(h.functionType)
	w.byte(h.arity)
	w.byte(h.paramCount)
	w.byte(h.unknown)
	w.u16(uint16(functionID))
	w.u16(h.frameSize)
	w.bytes(fn.name)
	w.bytes(fn.args)
	w.bytes(h.unknownPrefix)
	w.bytes(fn.code)
	w.bytes(h.unknownSuffix)
	return w.buf
}

// serializeFunctionModern is the V3 counterpart: a wider, reordered
// header with no parent/unknown-prefix-suffix fields.
func serializeFunctionModern(fn rawFunctionData, functionID uint32, baseAddress uint32) []byte {
	h := fn.header
	w := &leWriter{}
	w.u32(baseAddress)
	w.u32(h.codeAddress + baseAddress)
	w.byte(h.functionType)
	if h.functionType != 0 {
		w.byte(h.paramCount) // a callback's arity byte holds its argument count
	} else {
		w.byte(h.arity)
	}
	w.byte(byte(h.frameSize))
	w.byte(0) // padding
	w.u32(functionID)
	if h.nameAddress != nil {
		w.u32(*h.nameAddress + baseAddress)
	} else {
		w.u32(0)
	}
	if h.argsAddress != nil {
		w.u32(*h.argsAddress + baseAddress)
	} else {
		w.u32(0)
	}
	w.bytes(fn.name)
	w.bytes(fn.args)
	w.bytes(fn.code)
	return w.buf
}
