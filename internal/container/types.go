package container

import "exalt/internal/opcode"

// ArgKind distinguishes the three argument literal forms a function's
// declared event arguments can carry.
type ArgKind int

const (
	ArgInt ArgKind = iota
	ArgFloat
	ArgStr
)

// EventArg is one function-declared argument literal. Exactly one of
// Int, Float, Str is meaningful, selected by Kind — legacy generations
// reject ArgFloat outright (see serializeArgsLegacy).
type EventArg struct {
	Kind  ArgKind
	Int   int32
	Float float32
	Str   string
}

// FunctionData is one function's fully decoded form: header fields, an
// optional name and declared arguments, and its opcode stream.
type FunctionData struct {
	FunctionType byte
	Arity        byte
	FrameSize    int
	Unknown      byte // meaningful only for G1 (FE9)

	// UnknownPrefix/UnknownSuffix preserve G1-only junk bytes that sit
	// between a function's name and its code, and between its
	// terminating opcode and the next function, respectively. Every
	// other generation leaves both empty.
	UnknownPrefix []byte
	UnknownSuffix []byte

	Name *string
	Args []EventArg
	Code []opcode.Opcode
}

// Script is a full decoded binary image: its declared type tag plus
// every function it defines, in table order.
type Script struct {
	ScriptType uint32
	Functions  []FunctionData
}

// rawFunctionHeader holds a function's header fields resolved to
// addresses (not yet biased by the function's own base address), the
// intermediate form shared by every generation's serializer before the
// function table is placed and base addresses become known.
type rawFunctionHeader struct {
	nameAddress   *uint32
	codeAddress   uint32
	parentAddress *uint32
	argsAddress   *uint32
	frameSize     uint16
	functionType  byte
	arity         byte
	paramCount    byte
	unknown       byte
	unknownPrefix []byte
	unknownSuffix []byte
}

type rawFunctionData struct {
	header rawFunctionHeader
	name   []byte
	args   []byte
	code   []byte
}
