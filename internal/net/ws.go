package net

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"

	"github.com/seresheim/penquest-pkgs/internal/protocol"
)

// WebSocket is a transport over a websocket connection to the gateway.
type WebSocket struct {
	conn *websocket.Conn
}

// DialWebSocket connects to the gateway's websocket endpoint.
func DialWebSocket(ctx context.Context, url string) (*WebSocket, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial gateway: %w", err)
	}
	// Game frames can be large (full game state resyncs).
	conn.SetReadLimit(16 << 20)
	return &WebSocket{conn: conn}, nil
}

func (w *WebSocket) ReadFrame(ctx context.Context) (*protocol.Incoming, error) {
	_, data, err := w.conn.Read(ctx)
	if err != nil {
		if websocket.CloseStatus(err) != -1 {
			return nil, ErrTransportClosed
		}
		return nil, err
	}
	var frame protocol.Incoming
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrBadEnvelope, err)
	}
	return &frame, nil
}

func (w *WebSocket) WriteFrame(ctx context.Context, out protocol.Outgoing) error {
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return w.conn.Write(ctx, websocket.MessageText, data)
}

func (w *WebSocket) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "session closed")
}
