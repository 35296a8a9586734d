package session

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Session is an ephemeral login token. The hard expiry is fixed at creation
// and never moves; the soft expiry slides forward on every successful lookup
// but a session past its hard expiry is dead regardless of activity.
type Session struct {
	ID          string
	Username    string
	ExpiresHard time.Time
	ExpiresSoft time.Time
	SoftTimeout time.Duration
}

// IsSoftExpired reports whether the sliding window has lapsed.
func (s Session) IsSoftExpired() bool {
	return s.isSoftExpiredAt(time.Now())
}

// IsHardExpired reports whether the absolute lifetime has lapsed.
func (s Session) IsHardExpired() bool {
	return s.isHardExpiredAt(time.Now())
}

// IsExpired reports whether either expiry has lapsed.
func (s Session) IsExpired() bool {
	return s.isExpiredAt(time.Now())
}

func (s Session) isSoftExpiredAt(now time.Time) bool {
	return s.ExpiresSoft.Before(now)
}

func (s Session) isHardExpiredAt(now time.Time) bool {
	return s.ExpiresHard.Before(now)
}

func (s Session) isExpiredAt(now time.Time) bool {
	return s.isSoftExpiredAt(now) || s.isHardExpiredAt(now)
}

// touch extends the soft expiry by the session's soft timeout from now.
// The hard expiry is deliberately untouched.
func (s *Session) touch(now time.Time) {
	s.ExpiresSoft = now.Add(s.SoftTimeout)
}

// newToken returns a 160-bit random token in hex. Uniqueness is not checked;
// at this entropy a collision is an accepted risk, not a guarded invariant.
func newToken() string {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		panic("session: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b)
}
