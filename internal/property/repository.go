// AngelaMos | 2026
// repository.go

package property

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id string) (*Property, error)
	Update(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]Property, int, error)
}

const propertiesSchema = `
	CREATE TABLE IF NOT EXISTS properties (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		category    TEXT NOT NULL
		            CHECK (category IN ('land', 'building', 'vehicle', 'equipment', 'other')),
		address     TEXT NOT NULL DEFAULT '',
		state_code  TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_by  UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_properties_state_code ON properties (state_code);`

func EnsureSchema(ctx context.Context, db core.DBTX) error {
	if _, err := db.ExecContext(ctx, propertiesSchema); err != nil {
		return fmt.Errorf("ensure properties schema: %w", err)
	}
	return nil
}

const propertyColumns = `id, name, category, address, state_code, description,
	COALESCE(created_by::text, '') AS created_by, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Property) error {
	query := `
		INSERT INTO properties (id, name, category, address, state_code,
		                        description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.Name,
		p.Category,
		p.Address,
		p.StateCode,
		p.Description,
		p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create property: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	var p Property
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) || core.IsInvalidTextError(err) {
		return nil, fmt.Errorf("get property: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}

	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *Property) error {
	query := `
		UPDATE properties
		SET name = $2, category = $3, address = $4, state_code = $5,
		    description = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &p.UpdatedAt, query,
		p.ID,
		p.Name,
		p.Category,
		p.Address,
		p.StateCode,
		p.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update property: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		if core.IsInvalidTextError(err) {
			return fmt.Errorf("delete property: %w", core.ErrNotFound)
		}
		return fmt.Errorf("delete property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete property: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Property, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.StateCode != "" {
		conditions = append(conditions, fmt.Sprintf("state_code = $%d", argIdx))
		args = append(args, params.StateCode)
		argIdx++
	}

	if params.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, params.Category)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM properties WHERE "+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("count properties: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM properties
		WHERE %s
		ORDER BY name, id
		LIMIT $%d OFFSET $%d`,
		propertyColumns, whereClause, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	var props []Property
	if err := r.db.SelectContext(ctx, &props, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}

	return props, total, nil
}
