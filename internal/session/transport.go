package session

import (
	"net/http"

	"amoura/backend/internal/models"
)

// Transport is the wire the session speaks over. The production
// implementation is a websocket; tests substitute an in-memory fake.
type Transport interface {
	// Connect dials the server. It returns once the underlying connection
	// is established; the protocol handshake completes asynchronously when
	// the server's CONNECTED frame arrives via Read.
	Connect(url string, header http.Header) error

	// Subscribe registers interest in a broadcast topic.
	Subscribe(topic string) error

	// Unsubscribe drops a topic registration.
	Unsubscribe(topic string) error

	// Publish sends a body to a server destination. Delivery is
	// fire-and-forget: a nil return means handed to the wire, not received.
	Publish(destination string, body any) error

	// Read blocks until the next inbound frame.
	Read() (models.Frame, error)

	// Deactivate closes the connection. Read unblocks with an error.
	Deactivate() error
}
