package rawscript

import (
	"testing"

	"exalt/internal/container"
	"exalt/internal/opcode"
)

func sampleScript() *container.Script {
	name := "Main"
	return &container.Script{
		ScriptType: 1,
		Functions: []container.FunctionData{
			{
				FunctionType: 0,
				Arity:        1,
				FrameSize:    2,
				Name:         &name,
				Args:         []container.EventArg{{Kind: container.ArgInt, Int: 7}},
				Code: []opcode.Opcode{
					{Kind: opcode.VarAddr, FrameID: 0},
					{Kind: opcode.IntLoad, Int: 1},
					{Kind: opcode.Assign},
					{Kind: opcode.ReturnFalse},
				},
			},
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	script := sampleScript()
	data, err := Marshal(script, JSON)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data, JSON)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	assertScriptsEqual(t, script, got)
}

func TestYAMLRoundTrip(t *testing.T) {
	script := sampleScript()
	data, err := Marshal(script, YAML)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data, YAML)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	assertScriptsEqual(t, script, got)
}

func TestRONIsExplicitlyUnsupported(t *testing.T) {
	if _, err := Marshal(sampleScript(), RON); err != ErrUnsupportedFormat {
		t.Errorf("Marshal(RON) = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Unmarshal([]byte("()"), RON); err != ErrUnsupportedFormat {
		t.Errorf("Unmarshal(RON) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"json": JSON, "yml": YAML, "yaml": YAML, "ron": RON}
	for name, want := range cases {
		got, err := ParseFormat(name)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Error("ParseFormat(toml): expected error")
	}
}

func assertScriptsEqual(t *testing.T, want, got *container.Script) {
	t.Helper()
	if got.ScriptType != want.ScriptType {
		t.Errorf("ScriptType = %d, want %d", got.ScriptType, want.ScriptType)
	}
	if len(got.Functions) != len(want.Functions) {
		t.Fatalf("got %d functions, want %d", len(got.Functions), len(want.Functions))
	}
	for i := range want.Functions {
		wf, gf := want.Functions[i], got.Functions[i]
		if gf.FrameSize != wf.FrameSize || gf.Arity != wf.Arity {
			t.Errorf("function %d: got %+v, want %+v", i, gf, wf)
		}
		if len(gf.Code) != len(wf.Code) {
			t.Fatalf("function %d: got %d opcodes, want %d", i, len(gf.Code), len(wf.Code))
		}
		for j := range wf.Code {
			if gf.Code[j] != wf.Code[j] {
				t.Errorf("function %d opcode %d: got %+v, want %+v", i, j, gf.Code[j], wf.Code[j])
			}
		}
	}
}
