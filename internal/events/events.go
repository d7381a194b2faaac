package events

import "time"

// EventType represents the type of session event
type EventType string

const (
	// EventConnected is emitted when a client session starts
	EventConnected EventType = "connected"
	// EventDisconnected is emitted when a client session ends
	EventDisconnected EventType = "disconnected"
	// EventClientError is emitted when echoing fails for a session
	EventClientError EventType = "client_error"
)

// Event represents a session event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Domain    string    `json:"domain"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data
type EventData struct {
	RemoteAddr string `json:"remote_addr,omitempty"`
	Bytes      int64  `json:"bytes,omitempty"`
	Duration   string `json:"duration,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewConnectedEvent creates an event for a new session
func NewConnectedEvent(sessionID, domain, remoteAddr string) Event {
	return Event{
		Type:      EventConnected,
		Timestamp: time.Now(),
		SessionID: sessionID,
		Domain:    domain,
		Data: EventData{
			RemoteAddr: remoteAddr,
		},
	}
}

// NewDisconnectedEvent creates an event for a finished session
func NewDisconnectedEvent(sessionID, domain string, bytes int64, lifetime time.Duration) Event {
	return Event{
		Type:      EventDisconnected,
		Timestamp: time.Now(),
		SessionID: sessionID,
		Domain:    domain,
		Data: EventData{
			Bytes:    bytes,
			Duration: lifetime.String(),
		},
	}
}

// NewClientErrorEvent creates an event for a failed session
func NewClientErrorEvent(sessionID, domain string, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return Event{
		Type:      EventClientError,
		Timestamp: time.Now(),
		SessionID: sessionID,
		Domain:    domain,
		Data: EventData{
			Error: errMsg,
		},
	}
}
