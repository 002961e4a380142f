package messaging

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

var validPresenceStatuses = map[string]bool{
	"online": true, "busy": true, "away": true, "offline": true,
}

// PresenceTracker holds per-hospital presence in memory. Entries expire to
// offline once the TTL passes without a heartbeat.
type PresenceTracker struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time

	// hospital -> user -> presence
	entries map[string]map[uuid.UUID]*UserPresence
}

func NewPresenceTracker(ttl time.Duration) *PresenceTracker {
	return &PresenceTracker{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]map[uuid.UUID]*UserPresence),
	}
}

// SetClock overrides the clock, for tests.
func (t *PresenceTracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// Heartbeat records a presence update. An unknown status is treated as
// online. Returns the stored entry.
func (t *PresenceTracker) Heartbeat(hospitalID string, userID uuid.UUID, status string) *UserPresence {
	if !validPresenceStatuses[status] {
		status = "online"
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	byUser, ok := t.entries[hospitalID]
	if !ok {
		byUser = make(map[uuid.UUID]*UserPresence)
		t.entries[hospitalID] = byUser
	}
	p := &UserPresence{UserID: userID, Status: status, LastSeen: t.now()}
	byUser[userID] = p
	return p
}

// Snapshot returns presence for a hospital with stale entries reported
// offline. Entries stale past two TTLs are dropped entirely.
func (t *PresenceTracker) Snapshot(hospitalID string) []*UserPresence {
	t.mu.Lock()
	defer t.mu.Unlock()

	byUser := t.entries[hospitalID]
	now := t.now()
	out := make([]*UserPresence, 0, len(byUser))
	for id, p := range byUser {
		age := now.Sub(p.LastSeen)
		if age > 2*t.ttl {
			delete(byUser, id)
			continue
		}
		status := p.Status
		if age > t.ttl {
			status = "offline"
		}
		out = append(out, &UserPresence{UserID: p.UserID, Status: status, LastSeen: p.LastSeen})
	}
	return out
}

// SetOffline marks a user offline immediately, used on explicit sign-out.
func (t *PresenceTracker) SetOffline(hospitalID string, userID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if byUser, ok := t.entries[hospitalID]; ok {
		if p, ok := byUser[userID]; ok {
			p.Status = "offline"
			p.LastSeen = t.now()
		}
	}
}
