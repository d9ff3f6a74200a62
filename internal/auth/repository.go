// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
)

// Repository persists refresh sessions.
type Repository interface {
	Insert(ctx context.Context, s *Session) error
	ByHash(ctx context.Context, tokenHash string) (*Session, error)
	ByID(ctx context.Context, id string) (*Session, error)
	// Rotate claims an active session for its successor. It returns
	// core.ErrNotFound when the session was already rotated or revoked.
	Rotate(ctx context.Context, id, replacedBy string) error
	Revoke(ctx context.Context, scope RevokeScope) (int64, error)
	ListActive(ctx context.Context, userID string) ([]Session, error)
	Purge(ctx context.Context, expiredBefore time.Time) (int64, error)
}

// RevokeScope selects the sessions a Revoke call ends.
type RevokeScope struct {
	column string
	value  string
}

func OneSession(id string) RevokeScope       { return RevokeScope{"id", id} }
func SessionFamily(id string) RevokeScope    { return RevokeScope{"family_id", id} }
func EverySession(userID string) RevokeScope { return RevokeScope{"user_id", userID} }

const sessionsSchema = `
	CREATE TABLE IF NOT EXISTS auth_sessions (
		id          UUID PRIMARY KEY,
		user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash  TEXT NOT NULL UNIQUE,
		family_id   UUID NOT NULL,
		expires_at  TIMESTAMPTZ NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		rotated_at  TIMESTAMPTZ,
		replaced_by UUID,
		revoked_at  TIMESTAMPTZ,
		user_agent  TEXT NOT NULL DEFAULT '',
		ip_address  TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_auth_sessions_user ON auth_sessions (user_id);
	CREATE INDEX IF NOT EXISTS idx_auth_sessions_family ON auth_sessions (family_id);`

const sessionColumns = `id, user_id, token_hash, family_id, expires_at, created_at,
	rotated_at, replaced_by, revoked_at, user_agent, ip_address`

// EnsureSchema creates auth_sessions. It depends on users.
func EnsureSchema(ctx context.Context, db core.DBTX) error {
	if _, err := db.ExecContext(ctx, sessionsSchema); err != nil {
		return fmt.Errorf("ensure auth_sessions schema: %w", err)
	}
	return nil
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, s *Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	_, err := sqlx.NamedExecContext(ctx, r.db, `
		INSERT INTO auth_sessions (
			id, user_id, token_hash, family_id, expires_at, created_at,
			user_agent, ip_address
		) VALUES (
			:id, :user_id, :token_hash, :family_id, :expires_at, :created_at,
			:user_agent, :ip_address
		)`, s)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

func (r *repository) ByHash(ctx context.Context, tokenHash string) (*Session, error) {
	return r.one(ctx, "token_hash", tokenHash)
}

func (r *repository) ByID(ctx context.Context, id string) (*Session, error) {
	s, err := r.one(ctx, "id", id)
	if core.IsInvalidTextError(err) {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}
	return s, err
}

func (r *repository) one(ctx context.Context, column, value string) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM auth_sessions WHERE ` + column + ` = $1`

	var s Session
	err := r.db.GetContext(ctx, &s, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	return &s, nil
}

func (r *repository) Rotate(ctx context.Context, id, replacedBy string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE auth_sessions
		SET rotated_at = NOW(), replaced_by = $2
		WHERE id = $1 AND rotated_at IS NULL AND revoked_at IS NULL`,
		id, replacedBy,
	)
	if err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}

	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	} else if n == 0 {
		return fmt.Errorf("rotate session: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Revoke(ctx context.Context, scope RevokeScope) (int64, error) {
	if scope.column == "" {
		return 0, fmt.Errorf("revoke sessions: empty scope")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE auth_sessions SET revoked_at = NOW()
		WHERE `+scope.column+` = $1 AND revoked_at IS NULL`,
		scope.value,
	)
	if core.IsInvalidTextError(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("revoke sessions by %s: %w", scope.column, err)
	}

	return result.RowsAffected()
}

func (r *repository) ListActive(ctx context.Context, userID string) ([]Session, error) {
	var sessions []Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT `+sessionColumns+`
		FROM auth_sessions
		WHERE user_id = $1
			AND rotated_at IS NULL
			AND revoked_at IS NULL
			AND expires_at > NOW()
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}

	return sessions, nil
}

func (r *repository) Purge(ctx context.Context, expiredBefore time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE expires_at < $1`, expiredBefore)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}

	return result.RowsAffected()
}
