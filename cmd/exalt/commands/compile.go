// cmd/exalt/commands/compile.go
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"exalt/internal/buildcfg"
	"exalt/internal/codegen"
	"exalt/internal/container"
	"exalt/internal/diag"
	"exalt/internal/parser"
	"exalt/internal/semantic"
)

// CompileCommand runs the full source-to-binary pipeline: parse,
// analyze, generate, assemble into a container image.
func CompileCommand(args []string, log *zap.Logger) error {
	input, args := extractFlag(args, "--input")
	output, args := extractFlag(args, "--output")
	gameTag, args := extractFlag(args, "--game")
	if input == "" && len(args) > 0 {
		input, args = args[0], args[1:]
	}
	if input == "" {
		return fmt.Errorf("compile: no input file given")
	}
	if gameTag == "" {
		gameTag = "g7"
	}
	game, err := buildcfg.ParseGame(gameTag)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".cmb"
	}

	source, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("compile: failed to read %s: %w", input, err)
	}

	log.Info("compile: parsing", zap.String("file", input))
	compilerLog := &diag.CompilerLog{}
	script := parser.Parse(input, string(source), compilerLog)

	log.Info("compile: analyzing")
	analyzer := semantic.NewAnalyzer(compilerLog)
	semScript := analyzer.Analyze(script)

	if compilerLog.HasErrors() {
		fmt.Fprint(os.Stderr, compilerLog.Render())
		return fmt.Errorf("compile: %d error(s) in %s", len(compilerLog.Errors()), input)
	}

	log.Info("compile: generating code")
	gen := codegen.NewGenerator(compilerLog)
	binaryScript := gen.Generate(semScript)

	if compilerLog.HasErrors() {
		fmt.Fprint(os.Stderr, compilerLog.Render())
		return fmt.Errorf("compile: %d error(s) generating code for %s", len(compilerLog.Errors()), input)
	}

	scriptName := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	image, err := container.Build(binaryScript, game, scriptName)
	if err != nil {
		return fmt.Errorf("compile: failed to assemble image: %w", err)
	}

	if err := os.WriteFile(output, image, 0644); err != nil {
		return fmt.Errorf("compile: failed to write %s: %w", output, err)
	}

	log.Info("compile: done", zap.String("output", output), zap.Int("bytes", len(image)))
	return nil
}
