package session

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"amoura/backend/internal/models"

	"github.com/gorilla/websocket"
)

// WebSocketTransport implements Transport over a gorilla websocket
// connection. Writes are serialized with a mutex; Read is single-consumer.
type WebSocketTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWebSocketTransport() *WebSocketTransport {
	return &WebSocketTransport{}
}

func (t *WebSocketTransport) Connect(url string, header http.Header) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(url, header)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	return nil
}

func (t *WebSocketTransport) Subscribe(topic string) error {
	return t.writeFrame(models.Frame{Type: models.FrameSubscribe, Destination: topic})
}

func (t *WebSocketTransport) Unsubscribe(topic string) error {
	return t.writeFrame(models.Frame{Type: models.FrameUnsubscribe, Destination: topic})
}

func (t *WebSocketTransport) Publish(destination string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return t.writeFrame(models.Frame{
		Type:        models.FrameSend,
		Destination: destination,
		Body:        payload,
	})
}

func (t *WebSocketTransport) Read() (models.Frame, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return models.Frame{}, ErrNotConnected
	}

	var frame models.Frame
	if err := conn.ReadJSON(&frame); err != nil {
		return models.Frame{}, err
	}
	return frame, nil
}

func (t *WebSocketTransport) Deactivate() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

func (t *WebSocketTransport) writeFrame(frame models.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return ErrNotConnected
	}
	return t.conn.WriteJSON(frame)
}
