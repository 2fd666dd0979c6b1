package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// WSRelay is a Subscriber/Publisher pair carrying the same Frame JSON
// (spec.md §6) over a single gorilla/websocket connection, for
// deployments that bridge to a websocket-based pub/sub relay instead of a
// raw line-delimited stream. Grounded on the teacher's relay package
// (internal/rtmp/relay), which fans RTMP media out to multiple
// destinations; this adapts that fan-in/out shape to a single relay
// connection carrying chat/video announcement frames.
type WSRelay struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

// NewWSRelay wraps an already-established websocket connection.
func NewWSRelay(conn *websocket.Conn) *WSRelay {
	return &WSRelay{conn: conn}
}

// Subscribe reads one JSON text frame per websocket message until the
// connection closes, ctx is cancelled, or a decode error occurs. The
// topic argument is accepted for interface symmetry; a single websocket
// connection in this adapter carries exactly one topic's frames.
func (w *WSRelay) Subscribe(ctx context.Context, topic string) (<-chan Frame, <-chan error) {
	frames := make(chan Frame)
	errs := make(chan error, 1)

	go func() {
		defer close(frames)
		defer close(errs)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			_, data, err := w.conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return
				}
				errs <- fmt.Errorf("wsrelay: read: %w", err)
				return
			}

			var f Frame
			if err := json.Unmarshal(data, &f); err != nil {
				errs <- fmt.Errorf("wsrelay: decode frame: %w", err)
				return
			}

			select {
			case frames <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frames, errs
}

// Publish writes frame as a single websocket text message. Safe for
// concurrent callers; gorilla/websocket requires writes be serialized.
func (w *WSRelay) Publish(ctx context.Context, topic string, frame Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("wsrelay: encode frame: %w", err)
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// Close closes the underlying connection.
func (w *WSRelay) Close() error { return w.conn.Close() }
