// AngelaMos | 2026
// repository.go

package eid

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
)

type Repository interface {
	EnsureSchema(ctx context.Context) error
	GetByUser(ctx context.Context, userID string) (*Card, error)
	Insert(ctx context.Context, card *Card) (*Card, error)
	UpdateSVG(ctx context.Context, card *Card) error
	FindVerification(ctx context.Context, shortID string) (*Verification, error)
	Count(ctx context.Context, stateCode string) (int, error)
}

const identityCardsSchema = `
	CREATE TABLE IF NOT EXISTS identity_cards (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		short_id   TEXT NOT NULL,
		svg        TEXT NOT NULL,
		version    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_identity_cards_short_id ON identity_cards (short_id);`

// EnsureSchema creates identity_cards. UNIQUE(user_id) is what keeps
// concurrent first-time generation down to one card per user.
func EnsureSchema(ctx context.Context, db core.DBTX) error {
	if _, err := db.ExecContext(ctx, identityCardsSchema); err != nil {
		return fmt.Errorf("ensure identity_cards schema: %w", err)
	}
	return nil
}

const cardColumns = `id, user_id, short_id, svg, version, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) EnsureSchema(ctx context.Context) error {
	return EnsureSchema(ctx, r.db)
}

func (r *repository) GetByUser(ctx context.Context, userID string) (*Card, error) {
	query := `SELECT ` + cardColumns + ` FROM identity_cards WHERE user_id = $1`

	var card Card
	err := r.db.GetContext(ctx, &card, query, userID)
	if errors.Is(err, sql.ErrNoRows) || core.IsInvalidTextError(err) {
		return nil, fmt.Errorf("get card: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}

	return &card, nil
}

// Insert writes card unless the user already has one, and returns whichever
// row is persisted.
func (r *repository) Insert(ctx context.Context, card *Card) (*Card, error) {
	query := `
		INSERT INTO identity_cards (id, user_id, short_id, svg, version)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING ` + cardColumns

	var stored Card
	err := r.db.GetContext(ctx, &stored, query,
		card.ID,
		card.UserID,
		card.ShortID,
		card.SVG,
		card.Version,
	)
	switch {
	case err == nil:
		return &stored, nil
	case errors.Is(err, sql.ErrNoRows):
		return r.GetByUser(ctx, card.UserID)
	case core.IsForeignKeyError(err), core.IsInvalidTextError(err):
		return nil, fmt.Errorf("insert card: unknown user: %w", core.ErrNotFound)
	default:
		return nil, fmt.Errorf("insert card: %w", err)
	}
}

func (r *repository) UpdateSVG(ctx context.Context, card *Card) error {
	query := `
		UPDATE identity_cards
		SET svg = $2, version = $3, short_id = $4, updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		card.UserID,
		card.SVG,
		card.Version,
		card.ShortID,
	).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update card: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}

	return nil
}

// FindVerification resolves a scanned card number. Card numbers are a
// prefix of the user id, so the oldest card wins the rare collision.
func (r *repository) FindVerification(
	ctx context.Context,
	shortID string,
) (*Verification, error) {
	query := `
		SELECT c.short_id, u.full_name, u.state_code, u.role, u.is_active,
		       c.created_at
		FROM identity_cards c
		JOIN users u ON u.id = c.user_id
		WHERE c.short_id = $1
		ORDER BY c.created_at
		LIMIT 1`

	var v Verification
	err := r.db.GetContext(ctx, &v, query, shortID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("verify card: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("verify card: %w", err)
	}

	return &v, nil
}

// Count reports issued cards, optionally only those of one state's members.
func (r *repository) Count(ctx context.Context, stateCode string) (int, error) {
	query := `SELECT COUNT(*) FROM identity_cards`
	var args []any
	if stateCode != "" {
		query = `
			SELECT COUNT(*) FROM identity_cards c
			JOIN users u ON u.id = c.user_id
			WHERE u.state_code = $1`
		args = append(args, stateCode)
	}

	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}
