// Package rawscript serializes a decoded internal/container.Script to
// and from the exalt CLI's on-disk RawScript formats (JSON, YAML),
// generalizing the teacher's internal/build bundle JSON shape
// (internal/build/builder.go's Bundle type) to the opcode-level
// structures C2/C3 already produce.
package rawscript

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"exalt/internal/container"
	"exalt/internal/opcode"
)

// Format selects a RawScript's on-disk encoding.
type Format int

const (
	JSON Format = iota
	YAML
	RON
)

// ParseFormat maps a CLI --format value onto a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "json":
		return JSON, nil
	case "yml", "yaml":
		return YAML, nil
	case "ron":
		return RON, nil
	default:
		return 0, fmt.Errorf("rawscript: unknown format %q", name)
	}
}

// ErrUnsupportedFormat is returned by Marshal/Unmarshal for RON: no
// ecosystem Go RON library exists in the retrieval pack or the
// broader ecosystem reachable from it, so RON is a recognized format
// tag that is explicitly rejected rather than silently handled some
// other way.
var ErrUnsupportedFormat = fmt.Errorf("rawscript: RON format is not supported")

// rawOpcode mirrors opcode.Opcode with Kind rendered as its name
// instead of its underlying int, so a RawScript round-trips as
// readable text instead of opaque small integers.
type rawOpcode struct {
	Kind    string  `json:"kind" yaml:"kind"`
	FrameID uint16  `json:"frame_id,omitempty" yaml:"frame_id,omitempty"`
	Int     int32   `json:"int,omitempty" yaml:"int,omitempty"`
	Float   float32 `json:"float,omitempty" yaml:"float,omitempty"`
	Str     string  `json:"str,omitempty" yaml:"str,omitempty"`
	Arity   uint8   `json:"arity,omitempty" yaml:"arity,omitempty"`
	CallID  int     `json:"call_id,omitempty" yaml:"call_id,omitempty"`
}

type rawEventArg struct {
	Kind  string  `json:"kind" yaml:"kind"`
	Int   int32   `json:"int,omitempty" yaml:"int,omitempty"`
	Float float32 `json:"float,omitempty" yaml:"float,omitempty"`
	Str   string  `json:"str,omitempty" yaml:"str,omitempty"`
}

type rawFunction struct {
	FunctionType byte          `json:"function_type" yaml:"function_type"`
	Arity        byte          `json:"arity" yaml:"arity"`
	FrameSize    int           `json:"frame_size" yaml:"frame_size"`
	Unknown      byte          `json:"unknown,omitempty" yaml:"unknown,omitempty"`
	UnknownPrefix []byte       `json:"unknown_prefix,omitempty" yaml:"unknown_prefix,omitempty"`
	UnknownSuffix []byte       `json:"unknown_suffix,omitempty" yaml:"unknown_suffix,omitempty"`
	Name         *string       `json:"name,omitempty" yaml:"name,omitempty"`
	Args         []rawEventArg `json:"args,omitempty" yaml:"args,omitempty"`
	Code         []rawOpcode   `json:"code" yaml:"code"`
}

type rawScript struct {
	ScriptType uint32        `json:"script_type" yaml:"script_type"`
	Functions  []rawFunction `json:"functions" yaml:"functions"`
}

var argKindNames = map[container.ArgKind]string{
	container.ArgInt:   "int",
	container.ArgFloat: "float",
	container.ArgStr:   "str",
}

var argKindByName = map[string]container.ArgKind{
	"int": container.ArgInt, "float": container.ArgFloat, "str": container.ArgStr,
}

func toRaw(script *container.Script) (*rawScript, error) {
	out := &rawScript{ScriptType: script.ScriptType}
	for _, fn := range script.Functions {
		rf := rawFunction{
			FunctionType:  fn.FunctionType,
			Arity:         fn.Arity,
			FrameSize:     fn.FrameSize,
			Unknown:       fn.Unknown,
			UnknownPrefix: fn.UnknownPrefix,
			UnknownSuffix: fn.UnknownSuffix,
			Name:          fn.Name,
		}
		for _, a := range fn.Args {
			name, ok := argKindNames[a.Kind]
			if !ok {
				return nil, fmt.Errorf("rawscript: unknown event arg kind %d", a.Kind)
			}
			rf.Args = append(rf.Args, rawEventArg{Kind: name, Int: a.Int, Float: a.Float, Str: a.Str})
		}
		for _, op := range fn.Code {
			rf.Code = append(rf.Code, rawOpcode{
				Kind: op.Kind.String(), FrameID: op.FrameID, Int: op.Int,
				Float: op.Float, Str: op.Str, Arity: op.Arity, CallID: op.CallID,
			})
		}
		out.Functions = append(out.Functions, rf)
	}
	return out, nil
}

func fromRaw(raw *rawScript) (*container.Script, error) {
	out := &container.Script{ScriptType: raw.ScriptType}
	for _, rf := range raw.Functions {
		fn := container.FunctionData{
			FunctionType:  rf.FunctionType,
			Arity:         rf.Arity,
			FrameSize:     rf.FrameSize,
			Unknown:       rf.Unknown,
			UnknownPrefix: rf.UnknownPrefix,
			UnknownSuffix: rf.UnknownSuffix,
			Name:          rf.Name,
		}
		for _, ra := range rf.Args {
			kind, ok := argKindByName[ra.Kind]
			if !ok {
				return nil, fmt.Errorf("rawscript: unknown event arg kind %q", ra.Kind)
			}
			fn.Args = append(fn.Args, container.EventArg{Kind: kind, Int: ra.Int, Float: ra.Float, Str: ra.Str})
		}
		for _, rop := range rf.Code {
			kind, err := opcode.ParseKind(rop.Kind)
			if err != nil {
				return nil, err
			}
			fn.Code = append(fn.Code, opcode.Opcode{
				Kind: kind, FrameID: rop.FrameID, Int: rop.Int,
				Float: rop.Float, Str: rop.Str, Arity: rop.Arity, CallID: rop.CallID,
			})
		}
		out.Functions = append(out.Functions, fn)
	}
	return out, nil
}

// Marshal renders script in the given format.
func Marshal(script *container.Script, format Format) ([]byte, error) {
	raw, err := toRaw(script)
	if err != nil {
		return nil, err
	}
	switch format {
	case JSON:
		data, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("rawscript: failed to marshal json: %w", err)
		}
		return data, nil
	case YAML:
		data, err := yaml.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("rawscript: failed to marshal yaml: %w", err)
		}
		return data, nil
	case RON:
		return nil, ErrUnsupportedFormat
	default:
		return nil, fmt.Errorf("rawscript: unknown format %d", format)
	}
}

// Unmarshal parses data in the given format back into a container.Script.
func Unmarshal(data []byte, format Format) (*container.Script, error) {
	var raw rawScript
	switch format {
	case JSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("rawscript: failed to parse json: %w", err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("rawscript: failed to parse yaml: %w", err)
		}
	case RON:
		return nil, ErrUnsupportedFormat
	default:
		return nil, fmt.Errorf("rawscript: unknown format %d", format)
	}
	return fromRaw(&raw)
}
