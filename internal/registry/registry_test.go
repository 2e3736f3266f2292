package registry

import (
	"testing"

	"exalt/internal/opcode"
)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestPutAndGetRoundTrip(t *testing.T) {
	r := openTestRegistry(t)

	source := []byte("def Main() { return; }")
	image := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	id, err := r.Put("quest_01", opcode.G3, source, image)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if id == "" {
		t.Fatal("Put: expected non-empty id")
	}

	got, err := r.Get("quest_01", opcode.G3)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ScriptName != "quest_01" || got.Game != opcode.G3 {
		t.Errorf("got %+v", got)
	}
	if string(got.Image) != string(image) {
		t.Errorf("Image = %v, want %v", got.Image, image)
	}
}

func TestGetMissingArtifact(t *testing.T) {
	r := openTestRegistry(t)
	if _, err := r.Get("nonexistent", opcode.G1); err == nil {
		t.Fatal("Get: expected error for missing artifact")
	}
}

func TestGetReturnsMostRecent(t *testing.T) {
	r := openTestRegistry(t)

	if _, err := r.Put("quest_02", opcode.G5, []byte("v1"), []byte{1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	id2, err := r.Put("quest_02", opcode.G5, []byte("v2"), []byte{2})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := r.Get("quest_02", opcode.G5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != id2 {
		t.Errorf("Get returned id %s, want most recent %s", got.ID, id2)
	}
}

func TestList(t *testing.T) {
	r := openTestRegistry(t)

	if _, err := r.Put("quest_01", opcode.G1, []byte("a"), []byte{1, 2, 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := r.Put("quest_02", opcode.G7, []byte("b"), []byte{4, 5}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	listing, err := r.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listing) != 2 {
		t.Fatalf("List: got %d entries, want 2", len(listing))
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	if _, err := Open("oracle://localhost/xe"); err == nil {
		t.Fatal("Open: expected error for unsupported scheme")
	}
}
