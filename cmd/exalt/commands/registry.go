// cmd/exalt/commands/registry.go
package commands

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"exalt/internal/buildcfg"
	"exalt/internal/registry"
)

const defaultRegistryDSN = "exalt_registry.db"

// RegistryCommand dispatches the registry init/put/get/list subcommands.
func RegistryCommand(args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("registry: expected a subcommand (init, put, get, list)")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "init":
		return registryInit(rest, log)
	case "put":
		return registryPut(rest, log)
	case "get":
		return registryGet(rest, log)
	case "list":
		return registryList(rest, log)
	default:
		return fmt.Errorf("registry: unknown subcommand %q", sub)
	}
}

func registryInit(args []string, log *zap.Logger) error {
	dsn, _ := extractFlag(args, "--dsn")
	if dsn == "" {
		dsn = defaultRegistryDSN
	}
	r, err := registry.Open(dsn)
	if err != nil {
		return fmt.Errorf("registry init: %w", err)
	}
	defer r.Close()
	log.Info("registry: initialized", zap.String("dsn", dsn))
	return nil
}

func registryPut(args []string, log *zap.Logger) error {
	dsn, args := extractFlag(args, "--dsn")
	scriptName, args := extractFlag(args, "--script")
	gameTag, args := extractFlag(args, "--game")
	sourcePath, args := extractFlag(args, "--source")
	imagePath, _ := extractFlag(args, "--image")
	if dsn == "" {
		dsn = defaultRegistryDSN
	}
	if scriptName == "" || sourcePath == "" || imagePath == "" {
		return fmt.Errorf("registry put: --script, --source and --image are required")
	}
	if gameTag == "" {
		gameTag = "g7"
	}
	game, err := buildcfg.ParseGame(gameTag)
	if err != nil {
		return fmt.Errorf("registry put: %w", err)
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("registry put: failed to read %s: %w", sourcePath, err)
	}
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("registry put: failed to read %s: %w", imagePath, err)
	}

	r, err := registry.Open(dsn)
	if err != nil {
		return fmt.Errorf("registry put: %w", err)
	}
	defer r.Close()

	id, err := r.Put(scriptName, game, source, image)
	if err != nil {
		return fmt.Errorf("registry put: %w", err)
	}
	log.Info("registry: stored artifact", zap.String("id", id), zap.String("script", scriptName))
	return nil
}

func registryGet(args []string, log *zap.Logger) error {
	dsn, args := extractFlag(args, "--dsn")
	scriptName, args := extractFlag(args, "--script")
	gameTag, args := extractFlag(args, "--game")
	output, _ := extractFlag(args, "--output")
	if dsn == "" {
		dsn = defaultRegistryDSN
	}
	if scriptName == "" || output == "" {
		return fmt.Errorf("registry get: --script and --output are required")
	}
	if gameTag == "" {
		gameTag = "g7"
	}
	game, err := buildcfg.ParseGame(gameTag)
	if err != nil {
		return fmt.Errorf("registry get: %w", err)
	}

	r, err := registry.Open(dsn)
	if err != nil {
		return fmt.Errorf("registry get: %w", err)
	}
	defer r.Close()

	artifact, err := r.Get(scriptName, game)
	if err != nil {
		return fmt.Errorf("registry get: %w", err)
	}
	if err := os.WriteFile(output, artifact.Image, 0644); err != nil {
		return fmt.Errorf("registry get: failed to write %s: %w", output, err)
	}
	log.Info("registry: wrote artifact", zap.String("id", artifact.ID), zap.String("output", output))
	return nil
}

func registryList(args []string, log *zap.Logger) error {
	dsn, _ := extractFlag(args, "--dsn")
	if dsn == "" {
		dsn = defaultRegistryDSN
	}
	r, err := registry.Open(dsn)
	if err != nil {
		return fmt.Errorf("registry list: %w", err)
	}
	defer r.Close()

	listing, err := r.List()
	if err != nil {
		return fmt.Errorf("registry list: %w", err)
	}
	for _, l := range listing {
		fmt.Printf("%s  %-20s %-4s %8s  %s\n", l.ID, l.ScriptName, l.Game, l.Size, l.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
