package store

import (
	"sort"
	"sync"
)

// TypingTracker keeps the set of remote participants currently typing in
// each room. Membership is transient; it is never persisted.
type TypingTracker struct {
	mu    sync.Mutex
	rooms map[string]map[string]struct{}
}

func NewTypingTracker() *TypingTracker {
	return &TypingTracker{
		rooms: make(map[string]map[string]struct{}),
	}
}

// Set adds or removes the user from the room's typing set and returns a
// sorted snapshot of the set after the change.
func (t *TypingTracker) Set(roomID, userID string, isTyping bool) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	users, ok := t.rooms[roomID]
	if !ok {
		users = make(map[string]struct{})
		t.rooms[roomID] = users
	}

	if isTyping {
		users[userID] = struct{}{}
	} else {
		delete(users, userID)
	}

	snapshot := make([]string, 0, len(users))
	for id := range users {
		snapshot = append(snapshot, id)
	}
	sort.Strings(snapshot)
	return snapshot
}

// Users returns a sorted snapshot of the room's typing set.
func (t *TypingTracker) Users(roomID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := make([]string, 0, len(t.rooms[roomID]))
	for id := range t.rooms[roomID] {
		snapshot = append(snapshot, id)
	}
	sort.Strings(snapshot)
	return snapshot
}

func (t *TypingTracker) Clear(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.rooms, roomID)
}
