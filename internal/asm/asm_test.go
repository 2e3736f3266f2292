package asm

import "testing"

func TestLabelTableBackpatchesForwardJump(t *testing.T) {
	table := NewLabelTable()
	code := []byte{0x3A, 0, 0, 0x01} // Jump opcode, 2-byte operand, then one more byte
	table.Jump("L1", 1)
	if err := table.Label("L1", 3); err != nil {
		t.Fatalf("Label: %v", err)
	}
	if err := table.Backpatch(code); err != nil {
		t.Fatalf("Backpatch: %v", err)
	}
	diff := int16(code[1])<<8 | int16(code[2])
	if diff != 2 {
		t.Errorf("backpatched displacement = %d, want 2", diff)
	}
}

func TestLabelTableBackpatchesBackwardJump(t *testing.T) {
	table := NewLabelTable()
	code := make([]byte, 10)
	if err := table.Label("top", 0); err != nil {
		t.Fatalf("Label: %v", err)
	}
	table.Jump("top", 7)
	if err := table.Backpatch(code); err != nil {
		t.Fatalf("Backpatch: %v", err)
	}
	diff := int16(code[7])<<8 | int16(code[8])
	if diff != -7 {
		t.Errorf("backpatched displacement = %d, want -7", diff)
	}
}

func TestLabelTableDuplicateLabelIsError(t *testing.T) {
	table := NewLabelTable()
	if err := table.Label("L1", 0); err != nil {
		t.Fatalf("first Label: %v", err)
	}
	if err := table.Label("L1", 4); err == nil {
		t.Fatal("second Label with same name returned nil error")
	}
}

func TestLabelTableUnresolvedJumpIsReported(t *testing.T) {
	table := NewLabelTable()
	table.Jump("nowhere", 0)
	code := make([]byte, 4)
	err := table.Backpatch(code)
	if err == nil {
		t.Fatal("Backpatch with unresolved jump returned nil error")
	}
	if err.Error() == "" {
		t.Error("Error() returned empty string")
	}
}

func TestLabelTableJumpOperandOutOfBounds(t *testing.T) {
	table := NewLabelTable()
	if err := table.Label("L1", 0); err != nil {
		t.Fatalf("Label: %v", err)
	}
	table.Jump("L1", 10)
	code := make([]byte, 4)
	if err := table.Backpatch(code); err == nil {
		t.Fatal("Backpatch with out-of-bounds jump operand returned nil error")
	}
}

func TestLabelTableDefinedLabelWithNoJumpsIsNotUnresolved(t *testing.T) {
	table := NewLabelTable()
	if err := table.Label("unused", 0); err != nil {
		t.Fatalf("Label: %v", err)
	}
	code := make([]byte, 2)
	if err := table.Backpatch(code); err != nil {
		t.Fatalf("Backpatch: %v", err)
	}
}

func TestResolverInternsAddressesInFirstEncounterOrder(t *testing.T) {
	r := NewResolver()
	a := r.Label(100)
	b := r.Label(200)
	c := r.Label(100)
	if a != "l0" {
		t.Errorf("first label = %q, want l0", a)
	}
	if b != "l1" {
		t.Errorf("second label = %q, want l1", b)
	}
	if c != a {
		t.Errorf("repeated address resolved to %q, want %q", c, a)
	}
}

func TestResolverLabelsSnapshotIsACopy(t *testing.T) {
	r := NewResolver()
	r.Label(5)
	snapshot := r.Labels()
	snapshot[5] = "tampered"
	if r.Labels()[5] == "tampered" {
		t.Error("Labels() returned a live reference instead of a copy")
	}
}
