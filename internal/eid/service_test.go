// AngelaMos | 2026
// service_test.go

package eid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
)

// memRepository keeps one card per user the way UNIQUE(user_id) with
// ON CONFLICT DO NOTHING does.
type memRepository struct {
	mu        sync.Mutex
	byUser    map[string]*Card
	inserts   int
	schemaErr error
	schemaRun int
}

func newMemRepository() *memRepository {
	return &memRepository{byUser: make(map[string]*Card)}
}

func (m *memRepository) EnsureSchema(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemaRun++
	return m.schemaErr
}

func (m *memRepository) GetByUser(_ context.Context, userID string) (*Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("get card: %w", core.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *memRepository) Insert(_ context.Context, card *Card) (*Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byUser[card.UserID]; ok {
		cp := *existing
		return &cp, nil
	}
	m.inserts++
	now := time.Now()
	card.CreatedAt, card.UpdatedAt = now, now
	cp := *card
	m.byUser[card.UserID] = &cp
	return card, nil
}

func (m *memRepository) UpdateSVG(_ context.Context, card *Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byUser[card.UserID]
	if !ok {
		return fmt.Errorf("update card: %w", core.ErrNotFound)
	}
	existing.SVG = card.SVG
	existing.Version = card.Version
	existing.ShortID = card.ShortID
	existing.UpdatedAt = time.Now()
	card.ID = existing.ID
	card.CreatedAt = existing.CreatedAt
	card.UpdatedAt = existing.UpdatedAt
	return nil
}

func (m *memRepository) FindVerification(_ context.Context, shortID string) (*Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byUser {
		if c.ShortID == shortID {
			return &Verification{CardNumber: c.ShortID, Active: true, IssuedAt: c.CreatedAt}, nil
		}
	}
	return nil, fmt.Errorf("find card: %w", core.ErrNotFound)
}

func (m *memRepository) Count(context.Context, string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byUser), nil
}

var aisha = CardData{
	UserID:          "abc123ef-0000-4000-8000-000000000000",
	FullName:        "Aisha Bello",
	StateCode:       "LA",
	DeploymentState: "Lagos",
	Role:            "STATE_SECRETARY",
}

func TestGetForUserWithoutCard(t *testing.T) {
	svc := NewService(newMemRepository(), testRenderer())

	_, err := svc.GetForUser(context.Background(), aisha.UserID)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestGenerateForUserIsIdempotent(t *testing.T) {
	repo := newMemRepository()
	svc := NewService(repo, testRenderer())
	ctx := context.Background()

	first, err := svc.GenerateForUser(ctx, aisha)
	require.NoError(t, err)
	require.Equal(t, "ABC123EF", first.ShortID)
	require.Equal(t, "v1", first.Version)

	renamed := aisha
	renamed.FullName = "Aisha B. Bello"
	second, err := svc.GenerateForUser(ctx, renamed)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.SVG, second.SVG)
	require.Equal(t, 1, repo.inserts)

	stored, err := svc.GetForUser(ctx, aisha.UserID)
	require.NoError(t, err)
	require.Equal(t, first.ID, stored.ID)
}

func TestConcurrentGenerateIssuesOneCard(t *testing.T) {
	repo := newMemRepository()
	svc := NewService(repo, testRenderer())

	const callers = 16
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			card, err := svc.GenerateForUser(context.Background(), aisha)
			if err == nil {
				ids[i] = card.ID
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, repo.inserts)
	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
}

func TestRegenerateKeepsCardID(t *testing.T) {
	svc := NewService(newMemRepository(), testRenderer())
	ctx := context.Background()

	original, err := svc.GenerateForUser(ctx, aisha)
	require.NoError(t, err)

	promoted := aisha
	promoted.Role = "STATE_AMEER"
	updated, err := svc.Regenerate(ctx, promoted)
	require.NoError(t, err)

	require.Equal(t, original.ID, updated.ID)
	require.NotEqual(t, original.SVG, updated.SVG)
	require.Contains(t, updated.SVG, "STATE AMEER")
}

func TestRegenerateWithoutCardIssuesOne(t *testing.T) {
	repo := newMemRepository()
	svc := NewService(repo, testRenderer())

	card, err := svc.Regenerate(context.Background(), aisha)
	require.NoError(t, err)
	require.Equal(t, aisha.UserID, card.UserID)
	require.Equal(t, 1, repo.inserts)
}

func TestVerifyNormalizesCardNumber(t *testing.T) {
	svc := NewService(newMemRepository(), testRenderer())
	ctx := context.Background()

	_, err := svc.GenerateForUser(ctx, aisha)
	require.NoError(t, err)

	v, err := svc.Verify(ctx, " abc123ef ")
	require.NoError(t, err)
	require.Equal(t, "ABC123EF", v.CardNumber)

	_, err = svc.Verify(ctx, "FFFFFFFF")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestSchemaRetriedUntilReady(t *testing.T) {
	repo := newMemRepository()
	repo.schemaErr = errors.New("connection refused")
	svc := NewService(repo, testRenderer())
	ctx := context.Background()

	_, err := svc.GetForUser(ctx, aisha.UserID)
	require.Error(t, err)
	require.NotErrorIs(t, err, core.ErrNotFound)

	repo.schemaErr = nil
	_, err = svc.GetForUser(ctx, aisha.UserID)
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.CountIssued(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 2, repo.schemaRun)
}
