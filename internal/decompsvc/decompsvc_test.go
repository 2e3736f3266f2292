package decompsvc

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"exalt/internal/container"
	"exalt/internal/opcode"
)

func buildTestImage(t *testing.T) []byte {
	t.Helper()
	name := "Main"
	fn := container.FunctionData{
		Name:      &name,
		FrameSize: 1,
		Code: []opcode.Opcode{
			{Kind: opcode.VarAddr, FrameID: 0},
			{Kind: opcode.IntLoad, Int: 1},
			{Kind: opcode.Assign},
			{Kind: opcode.Consume},
			{Kind: opcode.ReturnFalse},
		},
	}
	image, err := container.Build(&container.Script{Functions: []container.FunctionData{fn}}, opcode.G3, "test")
	if err != nil {
		t.Fatalf("container.Build: %v", err)
	}
	return image
}

func TestHandleStreamsDecompiledFunctions(t *testing.T) {
	srv := httptest.NewServer(New(nil))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	req, err := json.Marshal(Request{Game: "g3"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, req); err != nil {
		t.Fatalf("WriteMessage(request): %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, buildTestImage(t)); err != nil {
		t.Fatalf("WriteMessage(image): %v", err)
	}

	var chunks []Chunk
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		var c Chunk
		if err := json.Unmarshal(data, &c); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if c.Error != "" {
			t.Fatalf("decompsvc returned error: %s", c.Error)
		}
		chunks = append(chunks, c)
		if c.Done {
			break
		}
	}

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2 (one function, one done marker)", len(chunks))
	}
	if chunks[0].Name != "Main" {
		t.Errorf("chunks[0].Name = %q, want Main", chunks[0].Name)
	}
	if !strings.Contains(chunks[0].Source, "Main") {
		t.Errorf("chunks[0].Source = %q, want it to mention Main", chunks[0].Source)
	}
}

func TestHandleRejectsUnknownGame(t *testing.T) {
	srv := httptest.NewServer(New(nil))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	req, _ := json.Marshal(Request{Game: "g99"})
	if err := conn.WriteMessage(websocket.TextMessage, req); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var c Chunk
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.Error == "" {
		t.Fatal("expected an error chunk for an unknown game tag")
	}
}
