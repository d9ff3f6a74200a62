//go:build integration

// AngelaMos | 2026
// repository_integration_test.go

package eid

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
	"github.com/carterperez-dev/templates/membership-api/internal/user"
)

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "members",
				"POSTGRES_PASSWORD": "members",
				"POSTGRES_DB":       "members",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://members:members@%s:%s/members?sslmode=disable", host, port.Port())
	db, err := sqlx.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, core.EnsureSchemas(ctx, db, user.EnsureSchema, EnsureSchema))
	return db
}

func seedUser(t *testing.T, db *sqlx.DB, id, stateCode string) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO users (id, email, password_hash, full_name, state_code)
		VALUES ($1, $2, 'x', 'Aisha Bello', $3)`,
		id, id+"@example.org", stateCode,
	)
	require.NoError(t, err)
}

func TestRepositoryAgainstPostgres(t *testing.T) {
	db := startPostgres(t)
	repo := NewRepository(db)
	svc := NewService(repo, testRenderer())
	ctx := context.Background()

	seedUser(t, db, aisha.UserID, "LA")

	t.Run("concurrent generation stores one row", func(t *testing.T) {
		var wg sync.WaitGroup
		ids := make([]string, 8)
		for i := range ids {
			wg.Add(1)
			go func() {
				defer wg.Done()
				card, err := svc.GenerateForUser(ctx, aisha)
				if err == nil {
					ids[i] = card.ID
				}
			}()
		}
		wg.Wait()

		var rows int
		require.NoError(t, db.GetContext(ctx, &rows,
			`SELECT COUNT(*) FROM identity_cards WHERE user_id = $1`, aisha.UserID))
		require.Equal(t, 1, rows)
		for _, id := range ids {
			require.Equal(t, ids[0], id)
		}
	})

	t.Run("regenerate updates in place", func(t *testing.T) {
		before, err := repo.GetByUser(ctx, aisha.UserID)
		require.NoError(t, err)

		promoted := aisha
		promoted.Role = "STATE_AMEER"
		after, err := svc.Regenerate(ctx, promoted)
		require.NoError(t, err)
		require.Equal(t, before.ID, after.ID)
		require.Contains(t, after.SVG, "STATE AMEER")
	})

	t.Run("verification joins the holder", func(t *testing.T) {
		v, err := svc.Verify(ctx, "abc123ef")
		require.NoError(t, err)
		require.Equal(t, "ABC123EF", v.CardNumber)
		require.Equal(t, "LA", v.StateCode)
		require.True(t, v.Active)
	})

	t.Run("count scopes by state", func(t *testing.T) {
		n, err := repo.Count(ctx, "LA")
		require.NoError(t, err)
		require.Equal(t, 1, n)

		n, err = repo.Count(ctx, "KN")
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("unknown or malformed user", func(t *testing.T) {
		_, err := repo.GetByUser(ctx, "not-a-uuid")
		require.ErrorIs(t, err, core.ErrNotFound)

		_, err = svc.GenerateForUser(ctx, CardData{UserID: "00000000-0000-4000-8000-000000000000"})
		require.ErrorIs(t, err, core.ErrNotFound)
	})
}
