// cmd/exalt/commands/assemble.go
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

// AssembleCommand is the inverse of disassemble: a serialized
// RawScript back into a binary image.
func AssembleCommand(args []string, log *zap.Logger) error {
	input, args := extractFlag(args, "--input")
	output, args := extractFlag(args, "--output")
	gameTag, args := extractFlag(args, "--game")
	formatTag, args := extractFlag(args, "--format")
	if input == "" && len(args) > 0 {
		input, args = args[0], args[1:]
	}
	if input == "" {
		return fmt.Errorf("assemble: no input file given")
	}
	if gameTag == "" {
		gameTag = "g7"
	}
	if formatTag == "" {
		formatTag = strings.TrimPrefix(filepath.Ext(input), ".")
	}
	game, err := buildcfg.ParseGame(gameTag)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}
	format, err := rawscript.ParseFormat(formatTag)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".cmb"
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("assemble: failed to read %s: %w", input, err)
	}

	script, err := rawscript.Unmarshal(data, format)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	scriptName := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	image, err := container.Build(script, game, scriptName)
	if err != nil {
		return fmt.Errorf("assemble: failed to build image: %w", err)
	}
	if err := os.WriteFile(output, image, 0644); err != nil {
		return fmt.Errorf("assemble: failed to write %s: %w", output, err)
	}

	log.Info("assemble: done", zap.String("output", output), zap.Int("bytes", len(image)))
	return nil
}
