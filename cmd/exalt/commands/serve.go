// cmd/exalt/commands/serve.go
package commands

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"exalt/internal/decompsvc"
)

// ServeCommand starts the decompile-as-a-service websocket listener.
func ServeCommand(args []string, log *zap.Logger) error {
	addr, _ := extractFlag(args, "--addr")
	if addr == "" {
		addr = ":8080"
	}

	mux := http.NewServeMux()
	mux.Handle("/decompile", decompsvc.New(log))

	log.Info("serve: listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
