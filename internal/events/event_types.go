package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	// EventReaderLoggedIn fires after the host identity system reports a
	// successful login; handlers refresh the reader's access token.
	EventReaderLoggedIn EventType = "reader_logged_in"
)

// Event represents a domain event emitted by the gateway.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ReaderID  string      `json:"reader_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReaderLoggedInPayload payload.
type ReaderLoggedInPayload struct {
	Login string `json:"login"`
}
