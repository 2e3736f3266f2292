package opcode

import "testing"

func TestKindStringParseKindRoundTrip(t *testing.T) {
	for k, name := range kindNames {
		got, err := ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q) returned error: %v", name, err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", name, got, k)
		}
		if k.String() != name {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), name)
		}
	}
}

func TestParseKindUnknownName(t *testing.T) {
	if _, err := ParseKind("NotARealOpcode"); err == nil {
		t.Fatal("ParseKind(unknown name) returned nil error")
	}
}

func TestKindStringUnknownValue(t *testing.T) {
	k := Kind(9999)
	want := "Kind(9999)"
	if got := k.String(); got != want {
		t.Errorf("Kind(9999).String() = %q, want %q", got, want)
	}
}

func TestGenerationOf(t *testing.T) {
	cases := []struct {
		game Game
		want Generation
	}{
		{G1, V1},
		{G2, V2},
		{G3, V2},
		{G4, V2},
		{G5, V3},
		{G6, V3},
		{G7, V3},
	}
	for _, c := range cases {
		if got := GenerationOf(c.game); got != c.want {
			t.Errorf("GenerationOf(%v) = %v, want %v", c.game, got, c.want)
		}
	}
}

func TestOpcodeStringVariants(t *testing.T) {
	cases := []struct {
		name string
		op   Opcode
		want string
	}{
		{"VarLoad", Opcode{Kind: VarLoad, FrameID: 3}, "VarLoad(3)"},
		{"IntLoad", Opcode{Kind: IntLoad, Int: -7}, "IntLoad(-7)"},
		{"FloatLoad", Opcode{Kind: FloatLoad, Float: 1.5}, "FloatLoad(1.5)"},
		{"StrLoad", Opcode{Kind: StrLoad, Str: "hi"}, `StrLoad("hi")`},
		{"CallById", Opcode{Kind: CallById, CallID: 42}, "CallById(42)"},
		{"CallByName", Opcode{Kind: CallByName, Str: "Foo", Arity: 2}, `CallByName("Foo", 2)`},
		{"Jump", Opcode{Kind: Jump, Str: "L1"}, "Jump(L1)"},
		{"Format", Opcode{Kind: Format, Arity: 3}, "Format(3)"},
		{"Done", Opcode{Kind: Done}, "Done"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.op.String(); got != c.want {
				t.Errorf("Opcode.String() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestOpcodeEquality(t *testing.T) {
	a := Opcode{Kind: IntLoad, Int: 5}
	b := Opcode{Kind: IntLoad, Int: 5}
	c := Opcode{Kind: IntLoad, Int: 6}
	if a != b {
		t.Error("identical opcodes compared unequal")
	}
	if a == c {
		t.Error("distinct opcodes compared equal")
	}
}

func TestUnrecognizedOpcodeError(t *testing.T) {
	err := &UnrecognizedOpcodeError{Byte: 0xFE, Addr: 0x10}
	want := "unrecognized opcode 0xFE at address 0x10"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestUnresolvedJumpError(t *testing.T) {
	err := &UnresolvedJumpError{Labels: []string{"L1", "L2"}}
	if err.Error() == "" {
		t.Error("Error() returned empty string")
	}
}

// CallById's two-byte form combines differently per generation: legacy
// V2 shifts the high byte by 8, modern V3 shifts by 7. A CallID above
// 0x7F must round-trip through each generation's own table, not a
// shared constant.
func TestCallByIdVariableWidthEncodingPerGeneration(t *testing.T) {
	cases := []struct {
		name string
		gen  Generation
		id   int
	}{
		{"V2 single byte", V2, 5},
		{"V2 two byte", V2, 0x1FF},
		{"V3 single byte", V3, 5},
		{"V3 two byte", V3, 0x1FF},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			asm, dis := ForGeneration(c.gen)
			out, err := asm.Encode(Opcode{Kind: CallById, CallID: c.id}, nil, nil, nil)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			_, op, err := dis.Decode(NewCursor(out), nil, nil)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if op.Kind != CallById || op.CallID != c.id {
				t.Errorf("decoded %v, want CallById(%d)", op, c.id)
			}
		})
	}
}

// V3's CallById byte differs bitwise from V2's despite both using the
// same 0x80-flagged two-byte shape: V2 combines via <<8, V3 via <<7.
// Encoding the same large id in both generations must produce
// different bytes, or one of the two shifts has silently regressed to
// match the other.
func TestCallByIdV2AndV3ProduceDifferentBytesForSameId(t *testing.T) {
	v2Asm, _ := ForGeneration(V2)
	v3Asm, _ := ForGeneration(V3)
	id := 0x100
	v2Bytes, err := v2Asm.Encode(Opcode{Kind: CallById, CallID: id}, nil, nil, nil)
	if err != nil {
		t.Fatalf("V2 Encode: %v", err)
	}
	v3Bytes, err := v3Asm.Encode(Opcode{Kind: CallById, CallID: id}, nil, nil, nil)
	if err != nil {
		t.Fatalf("V3 Encode: %v", err)
	}
	// drop the leading opcode byte (0x37 for V2, 0x46 for V3) and
	// compare only the CallID payload.
	if string(v2Bytes[1:]) == string(v3Bytes[1:]) {
		t.Errorf("V2 and V3 encoded CallID %d identically: %v vs %v", id, v2Bytes, v3Bytes)
	}
}

// Modern-generation Return (byte 0x48) must round-trip as opcode.Return,
// not a since-removed SetReturn Kind that never existed in the
// ground-truth modern decoder.
func TestV3ReturnRoundTrip(t *testing.T) {
	asm, dis := ForGeneration(V3)
	out, err := asm.Encode(Opcode{Kind: Return}, nil, nil, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(out) != 1 || out[0] != 0x48 {
		t.Fatalf("encoded bytes = %v, want [0x48]", out)
	}
	_, op, err := dis.Decode(NewCursor(out), nil, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if op.Kind != Return {
		t.Errorf("decoded Kind = %v, want Return", op.Kind)
	}
}
