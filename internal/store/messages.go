package store

import (
	"sort"
	"sync"

	"chat-client/internal/models"
)

// MessageStore keeps the per-room message cache. A room that was never
// written to is indistinguishable from one that is present but empty; callers
// never see an absence state.
type MessageStore struct {
	mu    sync.Mutex
	rooms map[string][]models.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		rooms: make(map[string][]models.Message),
	}
}

// Insert adds the message to the room unless an entry with the same id is
// already present, then re-sorts the room by timestamp.
func (s *MessageStore) Insert(roomID string, msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.rooms[roomID] {
		if m.ID == msg.ID {
			return
		}
	}

	s.rooms[roomID] = append(s.rooms[roomID], msg)
	sortByTimestamp(s.rooms[roomID])
}

// Replace overwrites the first entry matching the predicate in place, then
// re-sorts the room. Returns false if nothing matched.
func (s *MessageStore) Replace(roomID string, match func(models.Message) bool, msg models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.rooms[roomID]
	for i, m := range msgs {
		if match(m) {
			msgs[i] = msg
			sortByTimestamp(msgs)
			return true
		}
	}
	return false
}

// SetAll discards whatever the room held and installs msgs as its new
// contents, sorted by timestamp.
func (s *MessageStore) SetAll(roomID string, msgs []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]models.Message, len(msgs))
	copy(copied, msgs)
	sortByTimestamp(copied)
	s.rooms[roomID] = copied
}

// Get returns a copy of the room's messages, oldest first. Unknown rooms
// yield an empty slice.
func (s *MessageStore) Get(roomID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.rooms[roomID]
	copied := make([]models.Message, len(msgs))
	copy(copied, msgs)
	return copied
}

func (s *MessageStore) Clear(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, roomID)
}

func sortByTimestamp(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}
