package container

import (
	"testing"

	"exalt/internal/opcode"
)

func sampleScript() *Script {
	name := "Main"
	return &Script{
		ScriptType: 1,
		Functions: []FunctionData{
			{
				FunctionType: 0,
				Arity:        0,
				FrameSize:    2,
				Name:         &name,
				Code: []opcode.Opcode{
					{Kind: opcode.IntLoad, Int: 5},
					{Kind: opcode.VarLoad, FrameID: 0},
					{Kind: opcode.Add},
					{Kind: opcode.Return},
				},
			},
		},
	}
}

func assertCodeEqual(t *testing.T, got, want []opcode.Opcode) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("code length = %d, want %d (got %v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("code[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBuildParseRoundTripPerGeneration(t *testing.T) {
	games := []opcode.Game{opcode.G1, opcode.G3, opcode.G7}
	for _, game := range games {
		t.Run(buildcfgGameName(game), func(t *testing.T) {
			script := sampleScript()
			image, err := Build(script, game, "Main")
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if len(image) == 0 {
				t.Fatal("Build produced an empty image")
			}

			got, err := Parse(image, game)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got.ScriptType != script.ScriptType {
				t.Errorf("ScriptType = %d, want %d", got.ScriptType, script.ScriptType)
			}
			if len(got.Functions) != 1 {
				t.Fatalf("Functions = %d, want 1", len(got.Functions))
			}
			fn := got.Functions[0]
			if fn.Name == nil || *fn.Name != "Main" {
				t.Errorf("Name = %v, want \"Main\"", fn.Name)
			}
			assertCodeEqual(t, fn.Code, script.Functions[0].Code)
		})
	}
}

func buildcfgGameName(g opcode.Game) string {
	switch g {
	case opcode.G1:
		return "G1"
	case opcode.G3:
		return "G3"
	case opcode.G7:
		return "G7"
	default:
		return "unknown"
	}
}

func TestParseRejectsTruncatedImage(t *testing.T) {
	script := sampleScript()
	image, err := Build(script, opcode.G7, "Main")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := Parse(image[:8], opcode.G7); err == nil {
		t.Fatal("Parse(truncated image) returned nil error")
	}
}

// A modern-generation (G7) CallById with an id above 0x7F must survive
// a full Build/Parse round trip: its two-byte form combines via <<7,
// distinct from legacy's <<8 (internal/opcode's writeCallIDV3/
// readCallIDV3). A regression here would silently resolve a script's
// function calls to the wrong index on three of the seven target games.
func TestBuildRoundTripsLargeCallIdOnModernGeneration(t *testing.T) {
	name := "Main"
	script := &Script{
		ScriptType: 1,
		Functions: []FunctionData{
			{
				FunctionType: 0,
				Name:         &name,
				Code: []opcode.Opcode{
					{Kind: opcode.CallById, CallID: 0x1FF},
					{Kind: opcode.Return},
				},
			},
		},
	}
	image, err := Build(script, opcode.G7, "Main")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := Parse(image, opcode.G7)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	assertCodeEqual(t, got.Functions[0].Code, script.Functions[0].Code)
}

func TestBuildRejectsArgsOnFunctionTypeZero(t *testing.T) {
	script := sampleScript()
	script.Functions[0].Args = []EventArg{{Kind: ArgInt, Int: 1}}
	if _, err := Build(script, opcode.G7, "Main"); err == nil {
		t.Fatal("Build with args on function type 0 returned nil error")
	}
}

func TestBuildRoundTripsIntArgsOnNonZeroFunctionType(t *testing.T) {
	// function_type 1 has no known event signature for G7, so an
	// unsigned int arg round-trips as a plain int regardless of the
	// declared Kind it was written with.
	script := &Script{
		ScriptType: 1,
		Functions: []FunctionData{
			{
				FunctionType: 1,
				Arity:        0,
				FrameSize:    0,
				Args:         []EventArg{{Kind: ArgInt, Int: 7}},
				Code:         []opcode.Opcode{{Kind: opcode.Return}},
			},
		},
	}
	image, err := Build(script, opcode.G7, "Script")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := Parse(image, opcode.G7)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	args := got.Functions[0].Args
	if len(args) != 1 {
		t.Fatalf("Args = %d, want 1", len(args))
	}
	if args[0].Kind != ArgInt || args[0].Int != 7 {
		t.Errorf("Args[0] = %+v, want Int=7", args[0])
	}
}

// function_type 0x1E is one of G6's known event signatures (a single
// string slot), so a string argument round-trips as ArgStr instead of
// degrading to a raw int like the unsigned fallback path.
func TestBuildRoundTripsStringArgUnderKnownSignature(t *testing.T) {
	script := &Script{
		ScriptType: 1,
		Functions: []FunctionData{
			{
				FunctionType: 0x1E,
				Arity:        0,
				FrameSize:    0,
				Args:         []EventArg{{Kind: ArgStr, Str: "hello"}},
				Code:         []opcode.Opcode{{Kind: opcode.Return}},
			},
		},
	}
	image, err := Build(script, opcode.G6, "Script")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := Parse(image, opcode.G6)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	args := got.Functions[0].Args
	if len(args) != 1 {
		t.Fatalf("Args = %d, want 1", len(args))
	}
	if args[0].Kind != ArgStr || args[0].Str != "hello" {
		t.Errorf("Args[0] = %+v, want Str=hello", args[0])
	}
}
