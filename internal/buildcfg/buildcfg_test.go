package buildcfg

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"exalt/internal/opcode"
)

func TestLoadMissingManifestUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Game != "g7" {
		t.Errorf("Game = %q, want g7", cfg.Game)
	}
	if cfg.EntryPoint != "main.exl" {
		t.Errorf("EntryPoint = %q, want main.exl", cfg.EntryPoint)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
}

func TestLoadParsesManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := Config{
		Name:         "quest_01",
		Game:         "g3",
		EntryPoint:   "quest_01.exl",
		IncludePaths: []string{"common.exl"},
		Format:       "yml",
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "exalt.json"), data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "quest_01" || cfg.Game != "g3" || cfg.Format != "yml" {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadRejectsMalformedManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "exalt.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("Load: expected error on malformed manifest, got nil")
	}
}

func TestResolveGame(t *testing.T) {
	cases := []struct {
		tag     string
		want    opcode.Game
		wantErr bool
	}{
		{"g1", opcode.G1, false},
		{"g4", opcode.G4, false},
		{"g7", opcode.G7, false},
		{"g9", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		t.Run(c.tag, func(t *testing.T) {
			cfg := &Config{Game: c.tag}
			got, err := cfg.ResolveGame()
			if c.wantErr {
				if err == nil {
					t.Fatalf("ResolveGame(%q): expected error, got %v", c.tag, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveGame(%q): %v", c.tag, err)
			}
			if got != c.want {
				t.Errorf("ResolveGame(%q) = %v, want %v", c.tag, got, c.want)
			}
		})
	}
}

func TestGameStringRoundTrip(t *testing.T) {
	for _, g := range []opcode.Game{opcode.G1, opcode.G2, opcode.G3, opcode.G4, opcode.G5, opcode.G6, opcode.G7} {
		tag := GameString(g)
		got, err := ParseGame(tag)
		if err != nil {
			t.Fatalf("ParseGame(%q): %v", tag, err)
		}
		if got != g {
			t.Errorf("round trip: GameString(%v) = %q, ParseGame back = %v", g, tag, got)
		}
	}
}

func TestResolveIncludesJoinsRelativeToRoot(t *testing.T) {
	cfg := &Config{IncludePaths: []string{"common.exl", "/abs/shared.exl"}}
	got := cfg.ResolveIncludes("/proj")
	want := []string{"/proj/common.exl", "/abs/shared.exl"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ResolveIncludes[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
