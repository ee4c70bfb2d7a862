package session

import (
	"context"
	"time"

	"github.com/noah-isme/student-console/internal/view"
)

// Snapshot is the persisted form of one browser session.
type Snapshot struct {
	State   view.State    `json:"state"`
	Notices []view.Notice `json:"notices,omitempty"`
	SavedAt time.Time     `json:"savedAt"`
}

// Store persists session snapshots between requests and across restarts.
type Store interface {
	// Load returns appErrors.ErrSessionNotFound when nothing is stored under id.
	Load(ctx context.Context, id string) (*Snapshot, error)
	Save(ctx context.Context, id string, snapshot Snapshot, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by stores that do not expire entries on their own.
// The registry janitor calls Purge on every tick.
type Purger interface {
	Purge() int
}

// Observer receives session bookkeeping metrics.
type Observer interface {
	ObserveSessionStore(operation, result string)
	SetActiveSessions(n int)
}
