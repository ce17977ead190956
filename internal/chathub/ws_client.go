package chathub

import (
	"encoding/json"
	"time"

	"amoura/backend/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient реалізує інтерфейс chathub.Client поверх gorilla/websocket.
type WebSocketClient struct {
	MemberID int64
	Conn     *websocket.Conn
	Hub      *ManagerService
	Send     chan models.Frame
}

func (c *WebSocketClient) GetMemberID() int64                  { return c.MemberID }
func (c *WebSocketClient) GetSendChannel() chan<- models.Frame { return c.Send }

// Run запускає 'pumps' для WebSocket.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close закриває Send канал (що зупинить writePump).
func (c *WebSocketClient) Close() {
	close(c.Send)
	// readPump зупиниться сам, коли Conn.Close() буде викликано в його defer
}

// readPump читає фрейми з WebSocket і маршрутизує їх у хаб.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c // Надсилаємо команду на Unregister
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Warn("error reading frame", zap.Int64("memberId", c.MemberID), zap.Error(err))
			}
			break
		}

		var frame models.Frame
		if err := json.Unmarshal(message, &frame); err != nil {
			zap.L().Warn("malformed frame from client",
				zap.Int64("memberId", c.MemberID), zap.Error(err))
			continue // Пропускаємо невірний фрейм
		}

		switch frame.Type {
		case models.FrameSubscribe:
			c.Hub.SubscribeCh <- SubscribeRequest{Client: c, Destination: frame.Destination}
		case models.FrameUnsubscribe:
			c.Hub.SubscribeCh <- SubscribeRequest{Client: c, Destination: frame.Destination, Unsubscribe: true}
		case models.FrameSend:
			c.Hub.IncomingCh <- InboundFrame{Client: c, Frame: frame}
		default:
			// CONNECTED/MESSAGE/ERROR від клієнта не очікуються
			zap.L().Debug("unexpected frame type from client", zap.String("type", frame.Type))
		}
	}
}

// writePump читає фрейми з каналу Send і записує їх у WebSocket.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Канал закрито хабом, закриваємо з'єднання WS
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(frame)
			if err != nil {
				zap.L().Error("error encoding frame", zap.Int64("memberId", c.MemberID), zap.Error(err))
				continue
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			// Надсилаємо Ping для підтримки з'єднання активним
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
