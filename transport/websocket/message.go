package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/edwintcloud/tictactoe/internal/engine"
	"github.com/edwintcloud/tictactoe/internal/entity"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is shared by requests and responses. Unused fields are omitted.
type Payload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	Action *engine.Action `json:"action,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// connection serializes writes to a single client.
// playerID is bound by connect and only touched by the reading goroutine.
type connection struct {
	conn     *websocket.Conn
	mu       sync.Mutex
	playerID string
}

func newConnection(conn *websocket.Conn) *connection {
	return &connection{conn: conn}
}

func (that *connection) send(action string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// keepAlive pings the client until done is closed or a ping fails.
func (that *connection) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (that *connection) close() error {
	return that.conn.Close()
}
