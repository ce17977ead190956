// Package session is the client-side core of a chat room connection: it owns
// the connection state machine, the deduplicated message log and the
// subscription lifecycle. All exported methods are safe for concurrent use.
package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"amoura/backend/internal/config"
	"amoura/backend/internal/models"
)

// State is the session's connection state.
type State string

const (
	StateDisconnected State = "DISCONNECTED"
	StateConnecting   State = "CONNECTING"
	StateConnected    State = "CONNECTED"
	// StateError is entered on a rejected or timed-out handshake. The
	// session never leaves it on its own; there is no automatic reconnect.
	StateError State = "ERROR"
)

// Session drives one member's connection to a chat room.
//
// Callbacks are optional and invoked from the session's internal goroutines;
// they must not block. They run outside the session's lock, so calling back
// into the session (State, Messages, LastError) is safe. Set them before
// calling Connect.
type Session struct {
	OnStateChange func(State)
	OnMessage     func(models.ChatMessage)
	OnQueueStatus func(models.QueueStatus)
	OnError       func(error)

	// HandshakeTimeout bounds the wait for the server's CONNECTED frame.
	// Set before the first Connect; defaults to config.ConnectTimeout.
	HandshakeTimeout time.Duration

	transport Transport
	serverURL string
	memberID  int64
	nickname  string

	mu        sync.Mutex
	state     State
	roomID    int64
	lastErr   error
	closing   bool
	handshake *time.Timer
	// gen invalidates read loops and timers left over from earlier connects
	gen int

	// seen deduplicates by chatId; entries survive deletes so a re-broadcast
	// of a removed message cannot resurrect it.
	seen   map[int64]struct{}
	log    []models.ChatMessage
	hasNew bool
}

// NewSession creates a disconnected session for one member.
func NewSession(transport Transport, serverURL string, memberID int64, nickname string) *Session {
	return &Session{
		HandshakeTimeout: config.ConnectTimeout,
		transport:        transport,
		serverURL:        serverURL,
		memberID:         memberID,
		nickname:         nickname,
		state:            StateDisconnected,
		seen:             make(map[int64]struct{}),
	}
}

// Connect dials the server and starts the handshake for the given room.
//
// An empty token returns ErrAuthRequired without dialing. A repeated call
// for the room the session is already connecting or connected to is a no-op.
// The returned state is CONNECTING on success; CONNECTED is reached
// asynchronously when the server's CONNECTED frame arrives, at which point
// the session subscribes to the room topic and the matching lobby topic.
func (s *Session) Connect(roomID int64, token string) (State, error) {
	s.mu.Lock()
	if token == "" {
		state := s.state
		s.mu.Unlock()
		return state, ErrAuthRequired
	}
	if (s.state == StateConnecting || s.state == StateConnected) && s.roomID == roomID {
		state := s.state
		s.mu.Unlock()
		return state, nil
	}

	s.roomID = roomID
	s.closing = false
	s.gen++
	gen := s.gen
	notify := s.setStateLocked(StateConnecting)
	s.mu.Unlock()
	if notify != nil {
		notify()
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	if err := s.transport.Connect(s.serverURL, header); err != nil {
		s.failConnect(gen, &ConnectError{Message: err.Error()})
		return StateError, err
	}

	s.mu.Lock()
	s.handshake = time.AfterFunc(s.HandshakeTimeout, func() {
		s.failConnect(gen, &ConnectError{Code: "timeout", Message: "handshake timed out"})
	})
	s.mu.Unlock()

	go s.readLoop(gen)
	return StateConnecting, nil
}

// Send publishes a chat message to the connected room. Delivery is
// fire-and-forget: a nil return means the message was handed to the
// transport, not that anyone received it. There is no retry.
func (s *Session) Send(text string) error {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return ErrNotConnected
	}
	req := models.SendMessageRequest{
		ChatRoomID: s.roomID,
		Message:    text,
		Nickname:   s.nickname,
		MemberID:   s.memberID,
	}
	dest := models.SendMessageDest(s.roomID)
	s.mu.Unlock()

	if err := s.transport.Publish(dest, req); err != nil {
		s.recordError(err)
	}
	return nil
}

// DeleteMessage asks the server to delete one of this member's messages.
// The removal lands via the room topic broadcast, same as for every peer.
func (s *Session) DeleteMessage(chatID int64) error {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.mu.Unlock()

	req := models.DeleteMessageRequest{Type: "delete", MessageID: chatID}
	if err := s.transport.Publish(models.ChatMessageDest, req); err != nil {
		s.recordError(err)
	}
	return nil
}

// Disconnect unsubscribes and closes the transport. Safe to call in any
// state; repeated calls are no-ops.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	if s.handshake != nil {
		s.handshake.Stop()
	}
	roomID := s.roomID
	wasConnected := s.state == StateConnected
	notify := s.setStateLocked(StateDisconnected)
	s.mu.Unlock()
	if notify != nil {
		notify()
	}

	if wasConnected {
		_ = s.transport.Unsubscribe(models.ChatTopic(roomID))
		_ = s.transport.Unsubscribe(models.MatchingStatusTopic)
	}
	return s.transport.Deactivate()
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the most recent error the session observed.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// TakeNewMessage reports whether a message arrived since the last call and
// clears the flag. Polling UIs use it instead of the OnMessage callback.
func (s *Session) TakeNewMessage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.hasNew
	s.hasNew = false
	return had
}

// Messages returns a snapshot of the message log in arrival order.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.log))
	copy(out, s.log)
	return out
}

func (s *Session) readLoop(gen int) {
	for {
		frame, err := s.transport.Read()
		if err != nil {
			s.mu.Lock()
			if gen != s.gen || s.closing || s.state == StateError {
				s.mu.Unlock()
				return
			}
			// Connection dropped. Reconnecting is the caller's decision.
			s.lastErr = err
			if s.handshake != nil {
				s.handshake.Stop()
			}
			notify := s.setStateLocked(StateDisconnected)
			cb := s.OnError
			s.mu.Unlock()
			if notify != nil {
				notify()
			}
			if cb != nil {
				cb(err)
			}
			return
		}
		s.handleFrame(gen, frame)
	}
}

func (s *Session) handleFrame(gen int, frame models.Frame) {
	switch frame.Type {
	case models.FrameConnected:
		s.mu.Lock()
		if gen != s.gen || s.state != StateConnecting {
			s.mu.Unlock()
			return
		}
		if s.handshake != nil {
			s.handshake.Stop()
		}
		roomID := s.roomID
		notify := s.setStateLocked(StateConnected)
		s.mu.Unlock()
		if notify != nil {
			notify()
		}

		if err := s.transport.Subscribe(models.ChatTopic(roomID)); err != nil {
			s.recordError(err)
		}
		if err := s.transport.Subscribe(models.MatchingStatusTopic); err != nil {
			s.recordError(err)
		}

	case models.FrameError:
		var body models.ErrorBody
		_ = json.Unmarshal(frame.Body, &body)
		s.failConnect(gen, &ConnectError{Code: body.Code, Message: body.Message})

	case models.FrameMessage:
		s.mu.Lock()
		roomTopic := models.ChatTopic(s.roomID)
		s.mu.Unlock()

		switch frame.Destination {
		case roomTopic:
			s.ingestChat(frame.Destination, frame.Body)
		case models.MatchingStatusTopic:
			s.ingestQueueStatus(frame.Destination, frame.Body)
		}
	}
}

// ingestChat applies a room topic broadcast: either a delete command or a
// new chat message. Duplicates by chatId are dropped; the log keeps arrival
// order for the rest.
func (s *Session) ingestChat(topic string, body []byte) {
	var cmd models.DeleteMessageRequest
	if err := json.Unmarshal(body, &cmd); err == nil && cmd.Type == "delete" {
		s.removeMessage(cmd.MessageID)
		return
	}

	var msg models.ChatMessage
	err := json.Unmarshal(body, &msg)
	if err == nil && msg.ChatID == 0 {
		err = errors.New("missing chatId")
	}
	if err != nil {
		s.recordError(&MalformedPayloadError{Topic: topic, Err: err})
		return
	}

	s.mu.Lock()
	if _, dup := s.seen[msg.ChatID]; dup {
		s.mu.Unlock()
		return
	}
	s.seen[msg.ChatID] = struct{}{}
	s.log = append(s.log, msg)
	s.hasNew = true
	cb := s.OnMessage
	s.mu.Unlock()
	if cb != nil {
		cb(msg)
	}
}

func (s *Session) ingestQueueStatus(topic string, body []byte) {
	var status models.QueueStatus
	if err := json.Unmarshal(body, &status); err != nil {
		s.recordError(&MalformedPayloadError{Topic: topic, Err: err})
		return
	}
	s.mu.Lock()
	cb := s.OnQueueStatus
	s.mu.Unlock()
	if cb != nil {
		cb(status)
	}
}

func (s *Session) removeMessage(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.log {
		if s.log[i].ChatID == chatID {
			s.log = append(s.log[:i], s.log[i+1:]...)
			return
		}
	}
}

// failConnect moves the session to StateError unless the connect attempt it
// belongs to has been superseded or already completed.
func (s *Session) failConnect(gen int, cerr *ConnectError) {
	s.mu.Lock()
	if gen != s.gen || s.state != StateConnecting {
		s.mu.Unlock()
		return
	}
	if s.handshake != nil {
		s.handshake.Stop()
	}
	s.lastErr = cerr
	notify := s.setStateLocked(StateError)
	cb := s.OnError
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
	if cb != nil {
		cb(cerr)
	}
	_ = s.transport.Deactivate()
}

func (s *Session) recordError(err error) {
	s.mu.Lock()
	s.lastErr = err
	cb := s.OnError
	s.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

// setStateLocked must be called with s.mu held. It returns the callback
// notification to run after the mutex is released (nil when nothing changed),
// so OnStateChange can safely call back into the session.
func (s *Session) setStateLocked(state State) func() {
	if s.state == state {
		return nil
	}
	s.state = state
	cb := s.OnStateChange
	if cb == nil {
		return nil
	}
	return func() { cb(state) }
}
