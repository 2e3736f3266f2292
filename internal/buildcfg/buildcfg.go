// Package buildcfg reads a project's build configuration (source
// roots, include paths, target title, output format) from JSON,
// generalizing the teacher's internal/build manifest-loading shape to
// the exalt toolchain.
package buildcfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"exalt/internal/opcode"
)

// Config is a project's exalt.json manifest.
type Config struct {
	Name         string   `json:"name"`
	Game         string   `json:"game"`
	EntryPoint   string   `json:"entry_point"`
	IncludePaths []string `json:"include_paths"`
	OutputPath   string   `json:"output_path"`
	Format       string   `json:"format"`
	Debug        bool     `json:"debug"`
}

// Load reads exalt.json from projectRoot. A missing manifest is not an
// error: Load returns a Config populated with defaults, matching the
// teacher's loadManifest behavior for a missing sentra.json.
func Load(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, "exalt.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{
				Name:       filepath.Base(projectRoot),
				Game:       "g7",
				EntryPoint: "main.exl",
				Format:     "json",
			}, nil
		}
		return nil, fmt.Errorf("buildcfg: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("buildcfg: failed to parse %s: %w", path, err)
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	return &cfg, nil
}

// ResolveGame maps the manifest's game string onto an opcode.Game.
func (c *Config) ResolveGame() (opcode.Game, error) {
	return ParseGame(c.Game)
}

var gameNames = map[string]opcode.Game{
	"g1": opcode.G1, "g2": opcode.G2, "g3": opcode.G3, "g4": opcode.G4,
	"g5": opcode.G5, "g6": opcode.G6, "g7": opcode.G7,
}

// ParseGame maps a lowercase title tag ("g1".."g7") onto an
// opcode.Game. Unknown tags are rejected rather than silently
// defaulted, since picking the wrong generation silently corrupts
// every binary offset downstream.
func ParseGame(name string) (opcode.Game, error) {
	g, ok := gameNames[name]
	if !ok {
		return 0, fmt.Errorf("buildcfg: unknown game tag %q", name)
	}
	return g, nil
}

// GameString renders g back to its manifest tag, the inverse of
// ParseGame.
func GameString(g opcode.Game) string {
	for name, candidate := range gameNames {
		if candidate == g {
			return name
		}
	}
	return "unknown"
}

// ResolveIncludes expands the manifest's include paths relative to
// projectRoot, in declaration order (deterministic, matching the
// no-hash-map-iteration-order rule the rest of the toolchain follows).
func (c *Config) ResolveIncludes(projectRoot string) []string {
	out := make([]string, len(c.IncludePaths))
	for i, p := range c.IncludePaths {
		if filepath.IsAbs(p) {
			out[i] = p
			continue
		}
		out[i] = filepath.Join(projectRoot, p)
	}
	return out
}
