package models

import (
	"fmt"
	"strings"
	"time"
)

type MessageStatus string

const (
	StatusSending   MessageStatus = "sending"
	StatusSent      MessageStatus = "sent"
	StatusConfirmed MessageStatus = "confirmed"
)

type MessageKind string

const (
	KindText MessageKind = "text"
)

// LocalSender is the reserved sender id carried by messages that originated
// locally and have not been confirmed by the server yet.
const LocalSender = "temp"

// TempIDPrefix marks synthetic ids assigned to pending messages.
const TempIDPrefix = "temp_"

type Message struct {
	ID        string                 `json:"id"`
	RoomID    string                 `json:"room_id"`
	Content   string                 `json:"content"`
	Kind      MessageKind            `json:"type"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	SenderID  string                 `json:"sender_id"`
	Status    MessageStatus          `json:"status,omitempty"`
}

// Pending reports whether the message is a local send awaiting confirmation.
func (m Message) Pending() bool {
	return m.Status == StatusSending && strings.HasPrefix(m.ID, TempIDPrefix)
}

func (m Message) FromLocalSender() bool {
	return m.SenderID == LocalSender
}

// NewPendingMessage builds the optimistic local copy of an outbound send.
func NewPendingMessage(roomID, content string, kind MessageKind, metadata map[string]interface{}, now time.Time) Message {
	return Message{
		ID:        fmt.Sprintf("%s%d", TempIDPrefix, now.UnixMilli()),
		RoomID:    roomID,
		Content:   content,
		Kind:      kind,
		Metadata:  metadata,
		Timestamp: now,
		SenderID:  LocalSender,
		Status:    StatusSending,
	}
}
