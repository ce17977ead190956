package chathub

import "amoura/backend/internal/models"

// Client is the interface for one realtime connection managed by the hub.
// It abstracts the underlying transport so the hub and tests do not depend
// on gorilla/websocket directly.
type Client interface {
	// GetMemberID returns the authenticated member behind the connection.
	GetMemberID() int64

	// GetSendChannel returns the channel the hub writes outbound frames to.
	// It is a send-only channel.
	GetSendChannel() chan<- models.Frame

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and associated channels.
	Close()
}

// SubscribeRequest — команда хаба на підписку/відписку клієнта від топіка.
type SubscribeRequest struct {
	Client      Client
	Destination string
	Unsubscribe bool
}

// InboundFrame — SEND-фрейм, що надійшов від клієнта.
type InboundFrame struct {
	Client Client
	Frame  models.Frame
}

// Broadcast — тіло, яке треба розіслати всім підписникам топіка.
type Broadcast struct {
	Topic string
	Body  []byte
}
