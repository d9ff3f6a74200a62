// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id, role string) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	Stats(ctx context.Context, stateCode string) (*MemberStats, error)
}

const usersSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id               UUID PRIMARY KEY,
		email            TEXT NOT NULL UNIQUE,
		password_hash    TEXT NOT NULL,
		full_name        TEXT NOT NULL,
		phone            TEXT NOT NULL DEFAULT '',
		role             TEXT NOT NULL DEFAULT 'MEMBER'
		                 CHECK (role IN ('SUPER_ADMIN', 'NATIONAL_ADMIN', 'STATE_AMEER',
		                                 'STATE_SECRETARY', 'MCLO_AMEER', 'MEMBER')),
		state_code       TEXT NOT NULL,
		deployment_state TEXT NOT NULL DEFAULT '',
		service_year     INTEGER NOT NULL DEFAULT 0,
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		email_verified   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_users_state_code ON users (state_code);
	CREATE INDEX IF NOT EXISTS idx_users_role ON users (role);`

// EnsureSchema creates the users table. Every other table references it, so
// it runs first.
func EnsureSchema(ctx context.Context, db core.DBTX) error {
	if _, err := db.ExecContext(ctx, usersSchema); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

const userColumns = `id, email, password_hash, full_name, phone, role, state_code,
	deployment_state, service_year, is_active, email_verified, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, phone, role,
		                   state_code, deployment_state, service_year, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Phone,
		user.Role,
		user.StateCode,
		user.DeploymentState,
		user.ServiceYear,
		user.IsActive,
	)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsInvalidTextError(err) {
			return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET full_name = $2, phone = $3, state_code = $4,
		    deployment_state = $5, service_year = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.FullName,
		user.Phone,
		user.StateCode,
		user.DeploymentState,
		user.ServiceYear,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	return r.execOne(ctx, "update password", `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`, id, passwordHash)
}

func (r *repository) UpdateRole(ctx context.Context, id, role string) error {
	return r.execOne(ctx, "update role", `
		UPDATE users
		SET role = $2, updated_at = NOW()
		WHERE id = $1`, id, role)
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) error {
	return r.execOne(ctx, "set active", `
		UPDATE users
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1`, id, active)
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if core.IsInvalidTextError(err) {
			return fmt.Errorf("%s: %w", op, core.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR full_name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	if params.StateCode != "" {
		conditions = append(conditions, fmt.Sprintf("state_code = $%d", argIdx))
		args = append(args, params.StateCode)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM users WHERE " + whereClause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

// Stats counts members, optionally within one state.
func (r *repository) Stats(
	ctx context.Context,
	stateCode string,
) (*MemberStats, error) {
	where := "TRUE"
	var args []any
	if stateCode != "" {
		where = "state_code = $1"
		args = append(args, stateCode)
	}

	stats := &MemberStats{
		ByRole:  make(map[string]int),
		ByState: make(map[string]int),
	}

	totals := struct {
		Total  int `db:"total"`
		Active int `db:"active"`
	}{}
	err := r.db.GetContext(ctx, &totals, `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE is_active) AS active
		FROM users WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	stats.Total = totals.Total
	stats.Active = totals.Active

	for column, into := range map[string]map[string]int{
		"role":       stats.ByRole,
		"state_code": stats.ByState,
	} {
		var rows []bucket
		query := fmt.Sprintf(
			"SELECT %s AS key, COUNT(*) AS count FROM users WHERE %s GROUP BY %s",
			column, where, column,
		)
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("count members by %s: %w", column, err)
		}
		for _, b := range rows {
			into[b.Key] = b.Count
		}
	}

	return stats, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
