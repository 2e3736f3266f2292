// Package codegen lowers a resolved sem.Script into a per-function
// stream of internal/opcode.Opcode values (labels unresolved, left for
// internal/asm to backpatch once internal/container assembles the
// function into bytes), mirroring the teacher's own
// internal/compiler's expression/statement visitor shape generalized
// to a stack-based target with explicit frame slots instead of the
// teacher's global/constant-pool VM.
package codegen

import (
	"fmt"

	"exalt/internal/container"
	"exalt/internal/diag"
	"exalt/internal/opcode"
	"exalt/internal/sem"
)

// BadAssembly wraps a failure from internal/asm or internal/container
// encountered while finishing a function's emission.
type BadAssembly struct{ Err error }

func (e *BadAssembly) Error() string { return fmt.Sprintf("bad assembly: %v", e.Err) }
func (e *BadAssembly) Unwrap() error { return e.Err }

// UnreachableAssignmentForm is raised when an assignment's left side
// resolves to something that isn't a valid reference.
type UnreachableAssignmentForm struct{ Detail string }

func (e *UnreachableAssignmentForm) Error() string {
	return fmt.Sprintf("unreachable assignment form: %s", e.Detail)
}

// intrinsics lower directly to dedicated opcodes instead of a call.
var intrinsics = map[string]opcode.Kind{
	"negate": opcode.IntNegate,
	"fix":    opcode.Fix,
	"float":  opcode.Float,
	"streq":  opcode.StringEquals,
	"strne":  opcode.StringNotEquals,
}

// Generator lowers every function/callback in a sem.Script into
// container.FunctionData records, assigning call ids from a per-script
// name->id map built over every declared function in source order
// (matching the original's table-building pass) before any body is
// lowered, so forward calls resolve.
type Generator struct {
	log     *diag.CompilerLog
	callIDs map[string]int
}

// NewGenerator returns a Generator that reports into log.
func NewGenerator(log *diag.CompilerLog) *Generator {
	return &Generator{log: log, callIDs: make(map[string]int)}
}

// Generate lowers script into the functions of a container.Script.
// script.Globals is not carried over: container.Script has no field
// for a global frame size.
func (g *Generator) Generate(script *sem.Script) *container.Script {
	for _, decl := range script.Decls {
		if fn, ok := decl.(*sem.FunctionDecl); ok {
			if _, seen := g.callIDs[fn.Symbol.Name]; !seen {
				g.callIDs[fn.Symbol.Name] = len(g.callIDs)
			}
		}
	}

	out := &container.Script{}
	for _, decl := range script.Decls {
		switch d := decl.(type) {
		case *sem.FunctionDecl:
			out.Functions = append(out.Functions, g.lowerFunction(d))
		case *sem.CallbackDecl:
			out.Functions = append(out.Functions, g.lowerCallback(d))
		}
	}
	return out
}

type funcGen struct {
	g        *Generator
	frame    *frame
	labels   int
	code     []opcode.Opcode
	breakLbl []string
	contLbl  []string
}

func (g *Generator) newFuncGen() *funcGen {
	return &funcGen{g: g, frame: newFrame()}
}

func (fg *funcGen) newLabel() string {
	name := fmt.Sprintf("l%d", fg.labels)
	fg.labels++
	return name
}

func (fg *funcGen) emit(op opcode.Opcode) { fg.code = append(fg.code, op) }

func (g *Generator) lowerFunction(d *sem.FunctionDecl) container.FunctionData {
	fg := g.newFuncGen()
	for _, p := range d.Parameters {
		fg.frame.reserve(p, 1)
	}
	fg.stmt(d.Body)

	noDefaultReturn := false
	var prefix, suffix []byte
	for _, ann := range d.Annotations {
		switch a := ann.(type) {
		case sem.NoDefaultReturnAnnotation:
			noDefaultReturn = true
		case sem.PrefixAnnotation:
			prefix = a.Bytes
		case sem.SuffixAnnotation:
			suffix = a.Bytes
		}
	}
	if !noDefaultReturn {
		fg.emit(opcode.Opcode{Kind: opcode.ReturnFalse})
	}

	return container.FunctionData{
		FunctionType:  0,
		Arity:         uint8(len(d.Parameters)),
		FrameSize:     fg.frame.size(),
		UnknownPrefix: prefix,
		UnknownSuffix: suffix,
		Name:          &d.Symbol.Name,
		Code:          fg.code,
	}
}

func (g *Generator) lowerCallback(d *sem.CallbackDecl) container.FunctionData {
	fg := g.newFuncGen()
	fg.stmt(d.Body)

	noDefaultReturn := false
	for _, ann := range d.Annotations {
		if _, ok := ann.(sem.NoDefaultReturnAnnotation); ok {
			noDefaultReturn = true
		}
	}
	if !noDefaultReturn {
		fg.emit(opcode.Opcode{Kind: opcode.ReturnFalse})
	}

	args := make([]container.EventArg, len(d.Args))
	for i, lit := range d.Args {
		switch lit.Kind {
		case 0: // ast.LiteralInt
			args[i] = container.EventArg{Kind: container.ArgInt, Int: lit.Int}
		case 1: // ast.LiteralFloat
			args[i] = container.EventArg{Kind: container.ArgFloat, Float: lit.Float}
		default:
			args[i] = container.EventArg{Kind: container.ArgStr, Str: lit.Str}
		}
	}

	return container.FunctionData{
		FunctionType: byte(d.EventType),
		FrameSize:    fg.frame.size(),
		Args:         args,
		Code:         fg.code,
	}
}
