package models

// Outbound transport payloads.

type RoomEvent struct {
	RoomID string `json:"room_id"`
}

type SendMessagePayload struct {
	RoomID   string                 `json:"room_id"`
	Content  string                 `json:"content"`
	Kind     MessageKind            `json:"type"`
	Metadata map[string]interface{} `json:"metadata"`
}

type TypingPayload struct {
	RoomID   string `json:"room_id"`
	IsTyping bool   `json:"is_typing"`
}

// Inbound transport payloads.

type UserTypingEvent struct {
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}
