// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// SessionState is where a refresh session sits in its lifecycle.
type SessionState int

const (
	SessionActive SessionState = iota
	SessionRotated
	SessionRevoked
	SessionExpired
)

func (s SessionState) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionRotated:
		return "rotated"
	case SessionRevoked:
		return "revoked"
	case SessionExpired:
		return "expired"
	}
	return "unknown"
}

// Session is one signed-in device. Only the hash of its refresh token is
// stored; every rotation hands the family a new row and marks the old one
// rotated.
type Session struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	TokenHash  string     `db:"token_hash"`
	FamilyID   string     `db:"family_id"`
	ExpiresAt  time.Time  `db:"expires_at"`
	CreatedAt  time.Time  `db:"created_at"`
	RotatedAt  *time.Time `db:"rotated_at"`
	ReplacedBy *string    `db:"replaced_by"`
	RevokedAt  *time.Time `db:"revoked_at"`
	UserAgent  string     `db:"user_agent"`
	IPAddress  string     `db:"ip_address"`
}

// State reports the session state at now. Rotation wins over revocation so
// that presenting an already-rotated token always reads as reuse.
func (s *Session) State(now time.Time) SessionState {
	switch {
	case s.RotatedAt != nil:
		return SessionRotated
	case s.RevokedAt != nil:
		return SessionRevoked
	case !now.Before(s.ExpiresAt):
		return SessionExpired
	}
	return SessionActive
}
