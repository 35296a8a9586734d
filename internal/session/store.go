package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SweepInterval is how often the background sweep removes expired sessions.
// The sweep exists because a soft-expired session that is never looked up
// again would otherwise stay in memory until its hard expiry and beyond.
const SweepInterval = 900 * time.Second

// Store holds all live sessions. Sessions are in-memory only and are never
// written to durable storage. The store exclusively owns its Session values;
// lookups return copies.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	logger   *slog.Logger
	now      func() time.Time

	// OnSweep, when set, receives the number of sessions removed by each
	// background sweep. Set it before calling Run.
	OnSweep func(removed int)
}

// NewStore constructs an empty session store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*Session),
		logger:   logger,
		now:      time.Now,
	}
}

// Create generates a fresh session for the user and returns its id.
func (st *Store) Create(username string, hardTimeout, softTimeout time.Duration) string {
	now := st.now()
	s := &Session{
		ID:          newToken(),
		Username:    username,
		ExpiresHard: now.Add(hardTimeout),
		ExpiresSoft: now.Add(softTimeout),
		SoftTimeout: softTimeout,
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s.ID
}

// Get looks up a session by id. An unknown id returns no session. A known
// but expired session is deleted as a side effect and not returned. A live
// session has its soft expiry extended before a copy is returned; this is
// the sliding-expiration contract, and it never moves the hard expiry.
func (st *Store) Get(id string) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return Session{}, false
	}
	now := st.now()
	if s.isExpiredAt(now) {
		delete(st.sessions, id)
		return Session{}, false
	}
	s.touch(now)
	return *s, true
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of stored sessions, expired or not.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes every expired session and returns how many were removed.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	removed := 0
	for id, s := range st.sessions {
		if s.isExpiredAt(now) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every SweepInterval until ctx is cancelled.
func (st *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := st.Sweep()
			if removed > 0 {
				st.logger.Debug("swept expired sessions", slog.Int("removed", removed))
			}
			if st.OnSweep != nil {
				st.OnSweep(removed)
			}
		}
	}
}
