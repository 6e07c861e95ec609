package chat

import (
	"time"

	"chat-client/internal/models"
	"chat-client/internal/store"
)

// reconcileWindow bounds how far apart a pending message's local timestamp
// and the server's timestamp may be for the two to be considered the same
// message.
const reconcileWindow = 5 * time.Second

// Reconciler merges messages arriving from the transport into the room
// cache. A locally-sent message has no server identity until the server
// echoes it back, so incoming messages are matched against pending local
// sends by content within the reconcile window.
type Reconciler struct {
	store *store.MessageStore
}

func NewReconciler(s *store.MessageStore) *Reconciler {
	return &Reconciler{store: s}
}

// Apply inserts or reconciles the incoming message and returns the
// authoritative copy plus whether an existing pending entry was updated
// (true) or a new entry was inserted (false).
func (r *Reconciler) Apply(incoming models.Message) (models.Message, bool) {
	if incoming.Status == "" {
		incoming.Status = models.StatusConfirmed
	}

	// A message carrying the local sentinel sender should not normally come
	// off the wire; treat it as authoritative and store it as-is.
	if incoming.FromLocalSender() {
		r.store.Insert(incoming.RoomID, incoming)
		return incoming, false
	}

	if pendingID, ok := r.findPending(incoming); ok {
		r.store.Replace(incoming.RoomID, func(m models.Message) bool {
			return m.ID == pendingID
		}, incoming)
		return incoming, true
	}

	r.store.Insert(incoming.RoomID, incoming)
	return incoming, false
}

// findPending picks the pending message whose content matches exactly and
// whose timestamp is closest to the incoming one, inside the window. Closest
// wins so that two in-flight sends of the same text each bind to their own
// confirmation.
func (r *Reconciler) findPending(incoming models.Message) (string, bool) {
	var (
		bestID    string
		bestDelta time.Duration
		found     bool
	)

	for _, m := range r.store.Get(incoming.RoomID) {
		if !m.Pending() || m.Content != incoming.Content {
			continue
		}
		delta := absDuration(incoming.Timestamp.Sub(m.Timestamp))
		if delta >= reconcileWindow {
			continue
		}
		if !found || delta < bestDelta {
			bestID = m.ID
			bestDelta = delta
			found = true
		}
	}

	return bestID, found
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
