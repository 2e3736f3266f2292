// Package container implements the per-generation binary image format:
// header, function table, per-function records and the shared text
// pool, on top of internal/opcode's instruction encoding and
// internal/asm's label backpatching.
package container

import (
	"fmt"

	"exalt/internal/asm"
	"exalt/internal/opcode"
)

// Build assembles script into its binary image for game, under
// scriptName (only meaningful for the legacy generations, which embed
// it directly in the header).
func Build(script *Script, game opcode.Game, scriptName string) ([]byte, error) {
	gen := opcode.GenerationOf(game)
	l := layoutFor(gen)

	header, err := buildHeader(gen, scriptName, script.ScriptType)
	if err != nil {
		return nil, fmt.Errorf("container: failed to build script header: %w", err)
	}

	text := NewTextPool()
	rawFns := make([]rawFunctionData, len(script.Functions))
	for i, fn := range script.Functions {
		var raw rawFunctionData
		var err error
		if gen == opcode.V3 {
			raw, err = toRawFunctionModern(fn, text)
		} else {
			raw, err = toRawFunctionLegacy(fn, gen, text)
		}
		if err != nil {
			return nil, fmt.Errorf("container: failed to serialize function %d: %w", i, err)
		}
		rawFns[i] = raw
	}

	raw := append([]byte(nil), header...)
	var textAddr int
	if l.textFirst {
		textAddr = len(raw)
		raw = appendTextSection(raw, text)
	}

	functionTableLength := (len(rawFns) + 1) * 4
	var functionBytes []byte
	functionAddrs := make([]uint32, len(rawFns))
	for i, fn := range rawFns {
		baseAddress := uint32(len(raw) + functionTableLength + len(functionBytes))
		functionAddrs[i] = baseAddress
		var serialized []byte
		if gen == opcode.V3 {
			serialized = serializeFunctionModern(fn, uint32(i), baseAddress)
		} else {
			serialized = serializeFunctionLegacy(fn, uint32(i), baseAddress)
		}
		functionBytes = append(functionBytes, serialized...)
		if i != len(rawFns)-1 || l.padLastFunction {
			for len(functionBytes)%4 != 0 {
				functionBytes = append(functionBytes, 0)
			}
		}
	}

	eventTableAddr := len(raw)
	w := &leWriter{}
	for _, addr := range functionAddrs {
		w.u32(addr)
	}
	w.u32(0)
	raw = append(raw, w.buf...)
	raw = append(raw, functionBytes...)

	if !l.textFirst {
		textAddr = len(raw)
		raw = appendTextSection(raw, text)
	}

	if err := patchU32(raw, l.textDataPointerAddr, uint32(textAddr)); err != nil {
		return nil, err
	}
	if err := patchU32(raw, l.eventTablePointerAddr, uint32(eventTableAddr)); err != nil {
		return nil, err
	}
	return raw, nil
}

func appendTextSection(raw []byte, text *TextPool) []byte {
	raw = append(raw, text.Bytes()...)
	for len(raw)%4 != 0 {
		raw = append(raw, 0)
	}
	return raw
}

// Parse decodes a binary image for game back into a Script.
func Parse(data []byte, game opcode.Game) (*Script, error) {
	gen := opcode.GenerationOf(game)
	header, err := parseHeader(gen, data)
	if err != nil {
		return nil, err
	}

	if int(header.textDataAddr) > len(data) {
		return nil, fmt.Errorf("container: text data address is out of bounds")
	}
	text := NewTextReader(data[header.textDataAddr:])

	if int(header.functionTableAddr) >= len(data) {
		return nil, fmt.Errorf("container: function table address is out of bounds")
	}
	r := newLEReader(data)
	r.seek(int(header.functionTableAddr))
	var addrs []int
	for {
		next, err := r.u32()
		if err != nil {
			return nil, fmt.Errorf("container: failed to read function table: %w", err)
		}
		if next == 0 {
			break
		}
		addrs = append(addrs, int(next))
	}

	functions := make([]FunctionData, 0, len(addrs))
	for _, addr := range addrs {
		if addr >= len(data) {
			return nil, fmt.Errorf("container: function at address 0x%X is out of bounds", addr)
		}
		r.seek(addr)
		var rh rawFunctionHeader
		var err error
		if gen == opcode.V3 {
			rh, err = readFunctionHeaderModern(r)
		} else {
			rh, err = readFunctionHeaderLegacy(r)
		}
		if err != nil {
			return nil, fmt.Errorf("container: failed to read function at 0x%X: %w", addr, err)
		}

		var name *string
		if rh.nameAddress != nil {
			if int(*rh.nameAddress) >= len(data) {
				return nil, fmt.Errorf("container: name address out of bounds for function at 0x%X", addr)
			}
			s, err := ReadShiftJISString(data, int(*rh.nameAddress))
			if err != nil {
				return nil, fmt.Errorf("container: failed to read function name: %w", err)
			}
			name = &s
		}

		var args []EventArg
		if rh.argsAddress != nil {
			if int(*rh.argsAddress) >= len(data) {
				return nil, fmt.Errorf("container: args address out of bounds for function at 0x%X", addr)
			}
			ar := newLEReader(data)
			ar.seek(int(*rh.argsAddress))
			if gen == opcode.V3 {
				args, err = readFunctionArgsModern(ar, text, game, rh.functionType, int(rh.paramCount))
			} else {
				args, err = readFunctionArgsLegacy(ar, text, game, rh.functionType, int(rh.paramCount))
			}
			if err != nil {
				return nil, fmt.Errorf("container: failed to read function args at 0x%X: %w", addr, err)
			}
		}

		if int(rh.codeAddress) >= len(data) {
			return nil, fmt.Errorf("container: code address out of bounds for function at 0x%X", addr)
		}
		code, err := disassembleCode(data, int(rh.codeAddress), gen, text)
		if err != nil {
			return nil, fmt.Errorf("container: disassembly failed for function at 0x%X: %w", addr, err)
		}

		functions = append(functions, FunctionData{
			FunctionType: rh.functionType,
			Arity:        rh.arity,
			FrameSize:    int(rh.frameSize),
			Unknown:      rh.unknown,
			Name:         name,
			Args:         args,
			Code:         code,
		})
	}

	return &Script{ScriptType: header.scriptType, Functions: functions}, nil
}

// disassembleCode runs the two-pass decode the reference disassembler
// uses: a first pass reading raw opcodes and their real addresses
// (without trying to place labels), then a second pass that splices in
// synthetic Label pseudo-opcodes at every address a jump targeted.
func disassembleCode(data []byte, codeAddr int, gen opcode.Generation, text *TextReader) ([]opcode.Opcode, error) {
	_, disassembler := opcode.ForGeneration(gen)
	resolver := asm.NewResolver()
	c := opcode.NewCursor(data[codeAddr:])

	type addrOp struct {
		addr int
		op   opcode.Opcode
	}
	var ops []addrOp
	for {
		addr, op, err := disassembler.Decode(c, resolver, text)
		if err != nil {
			return nil, fmt.Errorf("failed to read opcode at 0x%X: %w", codeAddr+addr, err)
		}
		if op.Kind == opcode.Done {
			break
		}
		ops = append(ops, addrOp{addr: addr, op: op})
	}

	labels := resolver.Labels()
	placed := make(map[string]bool, len(labels))
	resolved := make([]opcode.Opcode, 0, len(ops))
	for _, ao := range ops {
		if name, ok := labels[ao.addr]; ok {
			resolved = append(resolved, opcode.Opcode{Kind: opcode.Label, Str: name})
			placed[name] = true
		}
		resolved = append(resolved, ao.op)
	}

	var unplaced []string
	for _, name := range labels {
		if !placed[name] {
			unplaced = append(unplaced, name)
		}
	}
	if len(unplaced) > 0 {
		return nil, &opcode.UnresolvedJumpError{Labels: unplaced}
	}
	return resolved, nil
}
