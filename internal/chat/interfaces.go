package chat

import (
	"context"
	"encoding/json"

	"chat-client/internal/models"
)

// Transport event names. Outbound events are emitted by the session;
// inbound events are delivered by the transport.
const (
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventSendMessage = "send_message"
	EventTyping      = "typing"

	EventNewMessage  = "new_message"
	EventMessageSent = "message_sent"
	EventUserTyping  = "user_typing"
	EventRoomJoined  = "room_joined"
	EventRoomLeft    = "room_left"

	EventConnect    = "connect"
	EventDisconnect = "disconnect"
	EventError      = "error"
)

// Transport is the bidirectional event channel to the chat server. The real
// implementation lives in internal/transport; tests use an in-memory fake.
type Transport interface {
	Connect() error
	Disconnect() error
	IsConnected() bool
	Emit(event string, payload interface{}) error
	On(event string, handler func(data json.RawMessage))
}

type HistoryPage struct {
	Messages    []models.Message
	UnreadCount int
}

// HistoryService fetches paginated message history and submits read
// receipts. FetchMessages returns messages newest-first, the way the server
// pages them; callers reverse for display order.
type HistoryService interface {
	FetchMessages(ctx context.Context, roomID string, limit, skip int) (*HistoryPage, error)
	MarkRead(ctx context.Context, messageID string) error
}
