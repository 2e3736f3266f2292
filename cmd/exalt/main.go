// cmd/exalt/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"exalt/cmd/exalt/commands"
)

const version = "1.0.0"

var commandAliases = map[string]string{
	"d":  "decompile",
	"c":  "compile",
	"as": "assemble",
	"da": "disassemble",
	"r":  "registry",
	"s":  "serve",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}
	args = args[1:]

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return
	}
	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		fmt.Println(version)
		return
	}

	logLevel, args := extractLogLevelFlag(args)
	logger := newLogger(logLevel)
	defer logger.Sync()

	var err error
	switch cmd {
	case "compile":
		err = commands.CompileCommand(args, logger)
	case "decompile":
		err = commands.DecompileCommand(args, logger)
	case "assemble":
		err = commands.AssembleCommand(args, logger)
	case "disassemble":
		err = commands.DisassembleCommand(args, logger)
	case "registry":
		err = commands.RegistryCommand(args, logger)
	case "serve":
		err = commands.ServeCommand(args, logger)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		showUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// extractLogLevelFlag pulls --log-level out of args before the
// subcommand's own flag parsing sees the rest, since the logger has
// to exist before any pipeline stage logs to it.
func extractLogLevelFlag(args []string) (string, []string) {
	out := make([]string, 0, len(args))
	level := "info"
	for i := 0; i < len(args); i++ {
		if args[i] == "--log-level" && i+1 < len(args) {
			level = args[i+1]
			i++
			continue
		}
		out = append(out, args[i])
	}
	return level, out
}

func newLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func showUsage() {
	fmt.Println("exalt - Exalt bytecode toolchain")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  exalt compile --input F.exl --output F.cmb --game G       Compile source to a binary image")
	fmt.Println("  exalt decompile --input F.cmb --output F.exl --game G     Recover source from a binary image     (alias: d)")
	fmt.Println("  exalt assemble --input F --output F.cmb --format FMT --game G    Assemble a RawScript into a binary image   (alias: as)")
	fmt.Println("  exalt disassemble --input F.cmb --output F --format FMT --game G Dump a binary image as a RawScript        (alias: da)")
	fmt.Println()
	fmt.Println("Build artifact registry:")
	fmt.Println("  exalt registry init --dsn DSN")
	fmt.Println("  exalt registry put --dsn DSN --script NAME --game G --source F.exl --image F.cmb")
	fmt.Println("  exalt registry get --dsn DSN --script NAME --game G --output F.cmb")
	fmt.Println("  exalt registry list --dsn DSN")
	fmt.Println()
	fmt.Println("Service:")
	fmt.Println("  exalt serve --addr :8080    Start the decompile-as-a-service websocket listener   (alias: s)")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --log-level LEVEL    debug, info, warn, error (default info)")
	fmt.Println("  --debug              decompile: declare every frame slot, not just arrays")
	fmt.Println("  --game G             g1..g7 (default g7)")
	fmt.Println("  --format FMT         json, yml (default json)")
}
