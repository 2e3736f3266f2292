// Package decompsvc exposes decompilation as a websocket service,
// generalizing the teacher's internal/network websocket server
// (internal/network/websocket.go, websocket_server.go) from a generic
// client-message relay into a single-purpose endpoint: accept a
// binary image, stream back decompiled source one function at a time.
package decompsvc

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"exalt/internal/buildcfg"
	"exalt/internal/container"
	"exalt/internal/decompiler"
	"exalt/internal/decompiler/ir"
	"exalt/internal/printer"
)

// Request is the control message a client sends before its binary
// image follows as the next frame.
type Request struct {
	Game  string `json:"game"`
	Debug bool   `json:"debug"`
}

// Chunk is one unit of streamed output: either a single decompiled
// declaration's source, or a terminal error.
type Chunk struct {
	Index int    `json:"index"`
	Total int    `json:"total"`
	Name  string `json:"name"`
	Source string `json:"source"`
	Error string `json:"error,omitempty"`
	Done  bool   `json:"done"`
}

// Server upgrades HTTP connections to websockets and runs the
// decompile-one-function-at-a-time protocol over each.
type Server struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// New builds a Server. log may be nil, in which case a no-op logger
// is used (matching the wippyai-wasm-runtime Logger() default).
func New(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeHTTP implements http.Handler, upgrading the connection and
// running Handle on it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("decompsvc: upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	s.Handle(conn)
}

// Handle runs the request/stream protocol over an already-upgraded
// connection: read a JSON Request, read one binary frame holding the
// image, decompile it, and write one Chunk per top-level declaration
// followed by a final done Chunk.
func (s *Server) Handle(conn *websocket.Conn) {
	var req Request
	if _, data, err := conn.ReadMessage(); err != nil {
		s.log.Warn("decompsvc: failed to read request", zap.Error(err))
		return
	} else if err := json.Unmarshal(data, &req); err != nil {
		s.writeError(conn, fmt.Errorf("decompsvc: invalid request: %w", err))
		return
	}

	game, err := buildcfg.ParseGame(req.Game)
	if err != nil {
		s.writeError(conn, err)
		return
	}

	_, image, err := conn.ReadMessage()
	if err != nil {
		s.log.Warn("decompsvc: failed to read image frame", zap.Error(err))
		return
	}

	s.log.Info("decompsvc: decompiling", zap.String("game", req.Game), zap.Int("bytes", len(image)))

	script, err := container.Parse(image, game)
	if err != nil {
		s.writeError(conn, fmt.Errorf("decompsvc: failed to parse image: %w", err))
		return
	}

	decompiled, err := decompiler.Decompile(script, game, req.Debug)
	if err != nil {
		s.writeError(conn, fmt.Errorf("decompsvc: failed to decompile: %w", err))
		return
	}

	s.stream(conn, decompiled)
}

func (s *Server) stream(conn *websocket.Conn, script *ir.Script) {
	total := len(script.Decls)
	for i, d := range script.Decls {
		single := &ir.Script{Decls: []ir.Decl{d}}
		chunk := Chunk{
			Index:  i,
			Total:  total,
			Name:   declName(d),
			Source: printer.Print(single, nil, nil),
		}
		if err := s.writeChunk(conn, chunk); err != nil {
			s.log.Warn("decompsvc: failed to write chunk", zap.Error(err))
			return
		}
	}
	s.writeChunk(conn, Chunk{Index: total, Total: total, Done: true})
}

func declName(d ir.Decl) string {
	if fn, ok := d.(ir.FunctionDecl); ok {
		return fn.Name
	}
	return ""
}

func (s *Server) writeChunk(conn *websocket.Conn, c Chunk) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) writeError(conn *websocket.Conn, err error) {
	data, _ := json.Marshal(Chunk{Error: err.Error(), Done: true})
	conn.WriteMessage(websocket.TextMessage, data)
}
