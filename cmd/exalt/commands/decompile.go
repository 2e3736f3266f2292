// cmd/exalt/commands/decompile.go
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"exalt/internal/buildcfg"
	"exalt/internal/container"
	"exalt/internal/decompiler"
	"exalt/internal/printer"
)

// DecompileCommand recovers source text from a binary image.
func DecompileCommand(args []string, log *zap.Logger) error {
	input, args := extractFlag(args, "--input")
	output, args := extractFlag(args, "--output")
	gameTag, args := extractFlag(args, "--game")
	debug, args := extractBoolFlag(args, "--debug")
	if input == "" && len(args) > 0 {
		input, args = args[0], args[1:]
	}
	if input == "" {
		return fmt.Errorf("decompile: no input file given")
	}
	if gameTag == "" {
		gameTag = "g7"
	}
	game, err := buildcfg.ParseGame(gameTag)
	if err != nil {
		return fmt.Errorf("decompile: %w", err)
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".exl"
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("decompile: failed to read %s: %w", input, err)
	}

	log.Info("decompile: parsing image", zap.String("file", input), zap.Int("bytes", len(data)))
	script, err := container.Parse(data, game)
	if err != nil {
		return fmt.Errorf("decompile: failed to parse %s: %w", input, err)
	}

	log.Info("decompile: recovering source", zap.Int("functions", len(script.Functions)))
	decompiled, err := decompiler.Decompile(script, game, debug)
	if err != nil {
		return fmt.Errorf("decompile: %w", err)
	}

	source := printer.Print(decompiled, nil, nil)
	if err := os.WriteFile(output, []byte(source), 0644); err != nil {
		return fmt.Errorf("decompile: failed to write %s: %w", output, err)
	}

	log.Info("decompile: done", zap.String("output", output))
	return nil
}
