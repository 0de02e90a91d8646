package ws

import "time"

// ConnInfo identifies one websocket connection. Exactly one of UserID and
// ClientID is nonzero depending on Kind.
type ConnInfo struct {
	ConnID      string
	Kind        string
	UserID      int
	ClientID    int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
