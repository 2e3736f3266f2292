// Package opcode defines the closed instruction set shared by every
// game generation and the three per-generation binary encodings.
package opcode

import "fmt"

// Kind tags the ~70-member opcode set. Not every kind is valid in
// every generation; the per-generation tables in table_v1.go,
// table_v2.go and table_v3.go enumerate which kinds exist and how they
// map to bytes for that generation.
type Kind int

const (
	Done Kind = iota
	VarLoad
	ArrLoad
	PtrLoad
	VarAddr
	ArrAddr
	PtrAddr
	GlobalVarLoad
	GlobalArrLoad
	GlobalPtrLoad
	GlobalVarAddr
	GlobalArrAddr
	GlobalPtrAddr
	IntLoad
	StrLoad
	FloatLoad
	Dereference
	Consume
	CompleteAssign
	Fix
	Float
	Add
	FloatAdd
	Subtract
	FloatSubtract
	Multiply
	FloatMultiply
	Divide
	FloatDivide
	Modulo
	IntNegate
	FloatNegate
	BinaryNot
	LogicalNot
	BinaryOr
	BinaryAnd
	Xor
	LeftShift
	RightShift
	Equal
	FloatEqual
	Exlcall
	NotEqual
	FloatNotEqual
	Nop0x3D
	LessThan
	FloatLessThan
	LessThanEqualTo
	FloatLessThanEqualTo
	GreaterThan
	FloatGreaterThan
	GreaterThanEqualTo
	FloatGreaterThanEqualTo
	CallById
	CallByName
	Return
	Jump
	JumpNotZero
	Or
	JumpZero
	And
	Yield
	Format
	Inc
	Dec
	Copy
	ReturnFalse
	ReturnTrue
	Label
	StringEquals
	StringNotEquals
	Nop0x40
	Assign
)

// Opcode is one instruction in a function's opcode stream. It is a
// tagged union over Kind: only the fields relevant to Kind are
// populated, mirroring the per-variant payloads of the source
// instruction set (frame ids, literal values, label/string names).
type Opcode struct {
	Kind Kind

	FrameID uint16 // *Load, *Addr variants
	Int     int32  // IntLoad
	Float   float32 // FloatLoad
	Str     string  // StrLoad value, CallByName name, Jump/Label/And/Or target
	Arity   uint8  // CallByName arity, Format arity
	CallID  int    // CallById
}

// String gives a human-readable rendering used by disassembly dumps
// and test failure messages.
func (o Opcode) String() string {
	switch o.Kind {
	case VarLoad, ArrLoad, PtrLoad, VarAddr, ArrAddr, PtrAddr,
		GlobalVarLoad, GlobalArrLoad, GlobalPtrLoad,
		GlobalVarAddr, GlobalArrAddr, GlobalPtrAddr:
		return fmt.Sprintf("%s(%d)", o.Kind.name(), o.FrameID)
	case IntLoad:
		return fmt.Sprintf("IntLoad(%d)", o.Int)
	case FloatLoad:
		return fmt.Sprintf("FloatLoad(%g)", o.Float)
	case StrLoad:
		return fmt.Sprintf("StrLoad(%q)", o.Str)
	case CallById:
		return fmt.Sprintf("CallById(%d)", o.CallID)
	case CallByName:
		return fmt.Sprintf("CallByName(%q, %d)", o.Str, o.Arity)
	case Jump, JumpNotZero, JumpZero, Label:
		return fmt.Sprintf("%s(%s)", o.Kind.name(), o.Str)
	case And, Or:
		return fmt.Sprintf("%s(%s)", o.Kind.name(), o.Str)
	case Format:
		return fmt.Sprintf("Format(%d)", o.Arity)
	default:
		return o.Kind.name()
	}
}

func (k Kind) name() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// String renders k as its opcode name, for serialized RawScript forms
// and diagnostic text.
func (k Kind) String() string { return k.name() }

var kindByName map[string]Kind

func init() {
	kindByName = make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		kindByName[n] = k
	}
}

// ParseKind is the inverse of Kind.String, used when reading a
// RawScript back from its serialized form.
func ParseKind(name string) (Kind, error) {
	k, ok := kindByName[name]
	if !ok {
		return 0, fmt.Errorf("opcode: unknown opcode name %q", name)
	}
	return k, nil
}

var kindNames = map[Kind]string{
	Done: "Done", VarLoad: "VarLoad", ArrLoad: "ArrLoad", PtrLoad: "PtrLoad",
	VarAddr: "VarAddr", ArrAddr: "ArrAddr", PtrAddr: "PtrAddr",
	GlobalVarLoad: "GlobalVarLoad", GlobalArrLoad: "GlobalArrLoad", GlobalPtrLoad: "GlobalPtrLoad",
	GlobalVarAddr: "GlobalVarAddr", GlobalArrAddr: "GlobalArrAddr", GlobalPtrAddr: "GlobalPtrAddr",
	IntLoad: "IntLoad", StrLoad: "StrLoad", FloatLoad: "FloatLoad",
	Dereference: "Dereference", Consume: "Consume", CompleteAssign: "CompleteAssign",
	Fix: "Fix", Float: "Float", Add: "Add", FloatAdd: "FloatAdd",
	Subtract: "Subtract", FloatSubtract: "FloatSubtract", Multiply: "Multiply",
	FloatMultiply: "FloatMultiply", Divide: "Divide", FloatDivide: "FloatDivide",
	Modulo: "Modulo", IntNegate: "IntNegate", FloatNegate: "FloatNegate",
	BinaryNot: "BinaryNot", LogicalNot: "LogicalNot", BinaryOr: "BinaryOr",
	BinaryAnd: "BinaryAnd", Xor: "Xor", LeftShift: "LeftShift", RightShift: "RightShift",
	Equal: "Equal", FloatEqual: "FloatEqual", Exlcall: "Exlcall",
	NotEqual: "NotEqual", FloatNotEqual: "FloatNotEqual", Nop0x3D: "Nop0x3D",
	LessThan: "LessThan", FloatLessThan: "FloatLessThan",
	LessThanEqualTo: "LessThanEqualTo", FloatLessThanEqualTo: "FloatLessThanEqualTo",
	GreaterThan: "GreaterThan", FloatGreaterThan: "FloatGreaterThan",
	GreaterThanEqualTo: "GreaterThanEqualTo", FloatGreaterThanEqualTo: "FloatGreaterThanEqualTo",
	CallById: "CallById", CallByName: "CallByName", Return: "Return",
	Jump: "Jump", JumpNotZero: "JumpNotZero", Or: "Or", JumpZero: "JumpZero", And: "And",
	Yield: "Yield", Format: "Format", Inc: "Inc", Dec: "Dec", Copy: "Copy",
	ReturnFalse: "ReturnFalse", ReturnTrue: "ReturnTrue", Label: "Label",
	StringEquals: "StringEquals", StringNotEquals: "StringNotEquals",
	Nop0x40: "Nop0x40", Assign: "Assign",
}

// Generation identifies one of the three binary-encoding cohorts.
type Generation int

const (
	V1 Generation = iota // legacy, G1
	V2                   // legacy, G2-G4
	V3                   // modern, G5-G7
)

// Game is one of the seven concrete titles; each maps to exactly one
// Generation.
type Game int

const (
	G1 Game = iota
	G2
	G3
	G4
	G5
	G6
	G7
)

// GenerationOf maps a concrete game identifier to its encoding cohort.
func GenerationOf(g Game) Generation {
	switch g {
	case G1:
		return V1
	case G2, G3, G4:
		return V2
	default:
		return V3
	}
}

// UnrecognizedOpcodeError is raised when a disassembler encounters a
// byte with no meaning in the active generation's table.
type UnrecognizedOpcodeError struct {
	Byte byte
	Addr int
}

func (e *UnrecognizedOpcodeError) Error() string {
	return fmt.Sprintf("unrecognized opcode 0x%X at address 0x%X", e.Byte, e.Addr)
}

// UnresolvedJumpError is raised when the disassembler's second pass
// finds synthesized labels that were never placed in the stream.
type UnresolvedJumpError struct {
	Labels []string
}

func (e *UnresolvedJumpError) Error() string {
	return fmt.Sprintf("unresolved jump labels: %v", e.Labels)
}

// ErrExlcallUnimplemented is returned whenever the assembler or
// disassembler would need to materialize an Exlcall opcode: the
// source toolchain never implemented it, so it can only ever be a
// declared-but-unreachable instruction.
var ErrExlcallUnimplemented = fmt.Errorf("exlcall opcode is unimplemented")
