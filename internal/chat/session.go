package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"chat-client/internal/events"
	"chat-client/internal/models"
	"chat-client/internal/store"
	"chat-client/pkg/logger"
)

var (
	ErrNotConnected = errors.New("transport not connected")
	ErrNoActiveRoom = errors.New("no active room")
	ErrEmptyContent = errors.New("message content is empty")
	ErrNotInRoom    = errors.New("not in this room")
)

const defaultHistoryLimit = 50

// Session drives the per-room message cache and typing state from transport
// events and exposes the outbound chat operations. It owns its store,
// tracker, and notification bus; nothing else mutates them.
type Session struct {
	transport  Transport
	history    HistoryService
	store      *store.MessageStore
	typing     *store.TypingTracker
	reconciler *Reconciler
	bus        *events.Bus

	historyLimit int

	mu         sync.Mutex
	activeRoom string
}

func NewSession(transport Transport, history HistoryService) *Session {
	s := &Session{
		transport:    transport,
		history:      history,
		store:        store.NewMessageStore(),
		typing:       store.NewTypingTracker(),
		bus:          events.NewBus(),
		historyLimit: defaultHistoryLimit,
	}
	s.reconciler = NewReconciler(s.store)
	s.bindTransport()
	return s
}

// Bus exposes the session's notification bus for the presentation layer.
func (s *Session) Bus() *events.Bus {
	return s.bus
}

// SetHistoryLimit overrides the page size used for the automatic history
// load on room join. Non-positive values are ignored.
func (s *Session) SetHistoryLimit(limit int) {
	if limit > 0 {
		s.historyLimit = limit
	}
}

func (s *Session) bindTransport() {
	s.transport.On(EventNewMessage, s.handleNewMessage)
	s.transport.On(EventMessageSent, s.handleMessageSent)
	s.transport.On(EventUserTyping, s.handleUserTyping)
	s.transport.On(EventRoomJoined, func(data json.RawMessage) {
		var ev models.RoomEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			logger.Debug("Joined room %s", ev.RoomID)
		}
	})
	s.transport.On(EventRoomLeft, func(data json.RawMessage) {
		var ev models.RoomEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			logger.Debug("Left room %s", ev.RoomID)
		}
	})
	s.transport.On(EventConnect, func(json.RawMessage) {
		s.bus.Publish(events.ConnectionStatus, events.ConnectionStatusPayload{Connected: true})
	})
	s.transport.On(EventDisconnect, func(json.RawMessage) {
		s.bus.Publish(events.ConnectionStatus, events.ConnectionStatusPayload{Connected: false})
	})
	s.transport.On(EventError, func(data json.RawMessage) {
		// Error payloads arrive as JSON strings; fall back to the raw
		// bytes for anything else.
		reason := string(data)
		var text string
		if err := json.Unmarshal(data, &text); err == nil {
			reason = text
		}
		s.bus.Publish(events.ConnectionStatus, events.ConnectionStatusPayload{
			Connected: s.transport.IsConnected(),
			Reason:    reason,
		})
	})
}

// JoinRoom makes roomID the active room. Any previously active room is left
// first. History for the new room loads asynchronously.
func (s *Session) JoinRoom(roomID string) error {
	if !s.transport.IsConnected() {
		return ErrNotConnected
	}

	s.mu.Lock()
	if s.activeRoom != "" {
		if err := s.transport.Emit(EventLeaveRoom, models.RoomEvent{RoomID: s.activeRoom}); err != nil {
			logger.Error("Leave room %s: %v", s.activeRoom, err)
		}
	}
	if err := s.transport.Emit(EventJoinRoom, models.RoomEvent{RoomID: roomID}); err != nil {
		s.mu.Unlock()
		return err
	}
	s.activeRoom = roomID
	s.mu.Unlock()

	go s.LoadHistory(context.Background(), roomID, s.historyLimit, 0)

	return nil
}

// LeaveRoom leaves roomID. It is only valid for the currently active room.
func (s *Session) LeaveRoom(roomID string) error {
	if !s.transport.IsConnected() {
		return ErrNotConnected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeRoom != roomID {
		return ErrNotInRoom
	}
	if err := s.transport.Emit(EventLeaveRoom, models.RoomEvent{RoomID: roomID}); err != nil {
		return err
	}
	s.activeRoom = ""
	return nil
}

// SendMessage sends content to the active room and synchronously inserts an
// optimistic pending copy into the cache, before any acknowledgment.
func (s *Session) SendMessage(content string, kind models.MessageKind, metadata map[string]interface{}) error {
	if !s.transport.IsConnected() {
		return ErrNotConnected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeRoom == "" {
		return ErrNoActiveRoom
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}
	if kind == "" {
		kind = models.KindText
	}

	err := s.transport.Emit(EventSendMessage, models.SendMessagePayload{
		RoomID:   s.activeRoom,
		Content:  content,
		Kind:     kind,
		Metadata: metadata,
	})
	if err != nil {
		return err
	}

	pending := models.NewPendingMessage(s.activeRoom, content, kind, metadata, time.Now())
	s.store.Insert(s.activeRoom, pending)
	return nil
}

// SetTypingIndicator signals the local participant's typing state for the
// active room. The local state is not tracked; only remote typing events
// mutate the tracker.
func (s *Session) SetTypingIndicator(isTyping bool) error {
	if !s.transport.IsConnected() {
		return ErrNotConnected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeRoom == "" {
		return ErrNoActiveRoom
	}
	return s.transport.Emit(EventTyping, models.TypingPayload{
		RoomID:   s.activeRoom,
		IsTyping: isTyping,
	})
}

// LoadHistory fetches a page of messages and replaces the room's cache with
// it, oldest first. On any failure the cache is left untouched, nothing is
// published, and an empty slice is returned.
func (s *Session) LoadHistory(ctx context.Context, roomID string, limit, skip int) []models.Message {
	page, err := s.history.FetchMessages(ctx, roomID, limit, skip)
	if err != nil {
		logger.Error("Failed to load messages for room %s: %v", roomID, err)
		return []models.Message{}
	}

	// The service pages newest-first; flip to oldest-first.
	msgs := make([]models.Message, len(page.Messages))
	for i, m := range page.Messages {
		msgs[len(msgs)-1-i] = m
	}

	s.store.SetAll(roomID, msgs)
	s.bus.Publish(events.MessagesLoaded, events.MessagesLoadedPayload{
		RoomID:      roomID,
		Messages:    msgs,
		UnreadCount: page.UnreadCount,
	})
	return msgs
}

// MarkMessageRead submits a read receipt. Failures are logged and dropped.
func (s *Session) MarkMessageRead(ctx context.Context, messageID string) {
	if err := s.history.MarkRead(ctx, messageID); err != nil {
		logger.Error("Failed to mark message %s as read: %v", messageID, err)
	}
}

// Messages returns the cached messages for a room, oldest first.
func (s *Session) Messages(roomID string) []models.Message {
	return s.store.Get(roomID)
}

// TypingUsers returns the remote participants currently typing in a room.
func (s *Session) TypingUsers(roomID string) []string {
	return s.typing.Users(roomID)
}

// ActiveRoom returns the active room id, or "" when idle.
func (s *Session) ActiveRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRoom
}

// ClearRoom drops a room's cached messages and typing state.
func (s *Session) ClearRoom(roomID string) {
	s.store.Clear(roomID)
	s.typing.Clear(roomID)
}

func (s *Session) handleNewMessage(data json.RawMessage) {
	var msg models.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Error("Malformed new_message payload: %v", err)
		return
	}

	resolved, updated := s.reconciler.Apply(msg)
	if updated {
		s.bus.Publish(events.MessageUpdated, events.MessageUpdatedPayload{
			RoomID:    resolved.RoomID,
			MessageID: resolved.ID,
			Message:   resolved,
		})
	} else {
		s.bus.Publish(events.NewMessage, events.NewMessagePayload{
			RoomID:  resolved.RoomID,
			Message: resolved,
		})
	}

	if resolved.RoomID == s.ActiveRoom() && !msg.FromLocalSender() {
		go s.MarkMessageRead(context.Background(), resolved.ID)
	}
}

// handleMessageSent marks the first pending message in the active room as
// sent. The acknowledgment carries no message id to match on.
func (s *Session) handleMessageSent(json.RawMessage) {
	active := s.ActiveRoom()
	if active == "" {
		return
	}

	var target models.Message
	found := false
	for _, m := range s.store.Get(active) {
		if m.Pending() {
			target = m
			found = true
			break
		}
	}
	if !found {
		return
	}

	target.Status = models.StatusSent
	s.store.Replace(active, func(m models.Message) bool { return m.ID == target.ID }, target)

	s.bus.Publish(events.MessageStatusUpdated, events.MessageStatusPayload{
		RoomID:    active,
		MessageID: target.ID,
		Status:    models.StatusSent,
	})
}

func (s *Session) handleUserTyping(data json.RawMessage) {
	var ev models.UserTypingEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		logger.Error("Malformed user_typing payload: %v", err)
		return
	}

	snapshot := s.typing.Set(ev.RoomID, ev.UserID, ev.IsTyping)
	s.bus.Publish(events.TypingUpdate, events.TypingUpdatePayload{
		RoomID:      ev.RoomID,
		UserID:      ev.UserID,
		IsTyping:    ev.IsTyping,
		TypingUsers: snapshot,
	})
}
