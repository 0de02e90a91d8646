package models

// Event names on the real-time channel.
const (
	EventJoinChatGroup    = "joinChatGroup"
	EventSendMessage      = "sendMessage"
	EventUpdateChatGroups = "updateChatGroups"
	EventReceiveMessage   = "receiveMessage"
	EventError            = "error"
)

// InboundEvent is what a connected socket sends to the server.
type InboundEvent struct {
	Event       string `json:"event"`
	ChatGroupID int    `json:"chat_group_id,omitempty"`
	ChatBody    string `json:"chat_body,omitempty"`
}

// OutboundEvent is emitted to sockets: a room-scoped message, a global
// groups-changed notification, or a per-sender error.
type OutboundEvent struct {
	Event   string       `json:"event"`
	Message *ChatMessage `json:"message,omitempty"`
	Reason  string       `json:"reason,omitempty"`
}
