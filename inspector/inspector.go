// Package inspector defines the devtools connection contract and a
// WebSocket client implementing it.
package inspector

import "encoding/json"

// Message types exchanged with an inspector.
const (
	// TypeAction reports a committed mutation: Action carries the label,
	// State the full post-transition snapshot.
	TypeAction = "action"
	// TypeState requests a state replacement (time travel): State carries
	// the snapshot to restore.
	TypeState = "state"
)

// Message is the wire shape exchanged with an external inspector.
type Message struct {
	Type   string          `json:"type"`
	Action string          `json:"action,omitempty"`
	Client string          `json:"client,omitempty"`
	State  json.RawMessage `json:"state,omitempty"`
}

// Inspector is a bidirectional connection to an external devtools
// instance. Receive's channel is closed when the connection ends.
type Inspector interface {
	Send(msg Message) error
	Receive() <-chan Message
	Close() error
}
