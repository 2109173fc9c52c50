package websocket

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const writeWait = 10 * time.Second

// ConnTransport adapts a websocket connection to the Transport
// interface. Writes are serialized because the answer goroutine and
// the registry's redis subscriber may both deliver to the same socket.
type ConnTransport struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewConnTransport(conn *websocket.Conn) *ConnTransport {
	return &ConnTransport{conn: conn}
}

func (t *ConnTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *ConnTransport) Close() error {
	return t.conn.Close()
}

// CloseWithCode sends a close frame with the given status code before
// tearing the socket down. Used for protocol violations (1003) and
// internal errors (1011).
func (t *ConnTransport) CloseWithCode(code int, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = t.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	return t.conn.Close()
}
