// cmd/exalt/commands/disassemble.go
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"exalt/internal/buildcfg"
	"exalt/internal/container"
	"exalt/internal/rawscript"
)

// DisassembleCommand decodes a binary image into a serialized
// RawScript (json/yml), one step short of full decompilation: every
// opcode is kept verbatim rather than recovered into control flow.
func DisassembleCommand(args []string, log *zap.Logger) error {
	input, args := extractFlag(args, "--input")
	output, args := extractFlag(args, "--output")
	gameTag, args := extractFlag(args, "--game")
	formatTag, args := extractFlag(args, "--format")
	if input == "" && len(args) > 0 {
		input, args = args[0], args[1:]
	}
	if input == "" {
		return fmt.Errorf("disassemble: no input file given")
	}
	if gameTag == "" {
		gameTag = "g7"
	}
	if formatTag == "" {
		formatTag = "json"
	}
	game, err := buildcfg.ParseGame(gameTag)
	if err != nil {
		return fmt.Errorf("disassemble: %w", err)
	}
	format, err := rawscript.ParseFormat(formatTag)
	if err != nil {
		return fmt.Errorf("disassemble: %w", err)
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + formatTag
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("disassemble: failed to read %s: %w", input, err)
	}

	log.Info("disassemble: parsing image", zap.String("file", input), zap.Int("bytes", len(data)))
	script, err := container.Parse(data, game)
	if err != nil {
		return fmt.Errorf("disassemble: failed to parse %s: %w", input, err)
	}

	out, err := rawscript.Marshal(script, format)
	if err != nil {
		return fmt.Errorf("disassemble: %w", err)
	}
	if err := os.WriteFile(output, out, 0644); err != nil {
		return fmt.Errorf("disassemble: failed to write %s: %w", output, err)
	}

	log.Info("disassemble: done", zap.String("output", output))
	return nil
}
