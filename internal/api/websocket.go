package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/boardswarmd/internal/provider"
)

// upgrader configures the WebSocket upgrader shared by every streaming
// endpoint. Origin checking is intentionally permissive: this server
// has no browser-facing deployment story of its own (that stays an
// external collaborator), so there is no origin list to enforce here.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// writeWSJSON marshals v and sends it as one text frame.
func writeWSJSON(conn *websocket.Conn, v any) error {
	return conn.WriteJSON(v)
}

// wsSendBinary adapts a WebSocket connection into a stream.Send,
// writing each chunk as one binary frame and propagating a chunk-level
// transport error as a Go error instead of a frame.
func wsSendBinary(conn *websocket.Conn) func(ctx context.Context, chunk provider.Chunk) error {
	return func(_ context.Context, chunk provider.Chunk) error {
		if chunk.Err != nil {
			return chunk.Err
		}
		return conn.WriteMessage(websocket.BinaryMessage, chunk.Data)
	}
}

// wsRecvBinary reads the next binary frame from conn, skipping frames
// of any other type, adapting the blocking gorilla read into a
// context-shaped Recv.
func wsRecvBinary(conn *websocket.Conn) func(ctx context.Context) ([]byte, error) {
	return func(_ context.Context) ([]byte, error) {
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return nil, err
			}
			if mt == websocket.BinaryMessage {
				return data, nil
			}
		}
	}
}

func decodeJSONBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
