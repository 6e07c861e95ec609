package events

import (
	"sync"

	"chat-client/internal/models"
)

// Event names published to the presentation layer.
const (
	MessagesLoaded       = "messages_loaded"
	NewMessage           = "new_message"
	MessageUpdated       = "message_updated"
	MessageStatusUpdated = "message_status_updated"
	TypingUpdate         = "typing_update"
	ConnectionStatus     = "connection_status"
)

type MessagesLoadedPayload struct {
	RoomID      string
	Messages    []models.Message
	UnreadCount int
}

type NewMessagePayload struct {
	RoomID  string
	Message models.Message
}

type MessageUpdatedPayload struct {
	RoomID    string
	MessageID string
	Message   models.Message
}

type MessageStatusPayload struct {
	RoomID    string
	MessageID string
	Status    models.MessageStatus
}

type TypingUpdatePayload struct {
	RoomID      string
	UserID      string
	IsTyping    bool
	TypingUsers []string
}

type ConnectionStatusPayload struct {
	Connected bool
	Reason    string
}

type Handler func(payload interface{})

// Bus is a per-session notification channel. Each session owns its own
// instance, so two sessions never see each other's events.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string]map[int]Handler),
	}
}

// Subscribe registers a handler for the named event and returns a function
// that removes it.
func (b *Bus) Subscribe(event string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[event] == nil {
		b.handlers[event] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[event][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[event], id)
	}
}

// Publish delivers the payload to every handler registered for the event.
// Handlers run on the caller's goroutine, one after another.
func (b *Bus) Publish(event string, payload interface{}) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event]))
	for _, fn := range b.handlers[event] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(payload)
	}
}
