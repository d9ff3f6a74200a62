// AngelaMos | 2026
// service.go

package eid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
)

type Service struct {
	repo     Repository
	renderer *Renderer

	schemaMu    sync.Mutex
	schemaReady bool
}

func NewService(repo Repository, renderer *Renderer) *Service {
	return &Service{repo: repo, renderer: renderer}
}

// ensureSchema runs the repository's EnsureSchema until it first succeeds.
func (s *Service) ensureSchema(ctx context.Context) error {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()

	if s.schemaReady {
		return nil
	}
	if err := s.repo.EnsureSchema(ctx); err != nil {
		return err
	}
	s.schemaReady = true
	return nil
}

func (s *Service) GetForUser(ctx context.Context, userID string) (*Card, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	return s.repo.GetByUser(ctx, userID)
}

// GenerateForUser returns the holder's card, rendering and storing it on the
// first call. Concurrent first calls all get the row that won the insert.
func (s *Service) GenerateForUser(ctx context.Context, holder CardData) (*Card, error) {
	ctx, span := core.StartSpan(ctx, "eid.GenerateForUser",
		attribute.String("user.id", holder.UserID),
	)
	defer span.End()

	if err := s.ensureSchema(ctx); err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	existing, err := s.repo.GetByUser(ctx, holder.UserID)
	if err == nil {
		core.AddSpanEvent(ctx, "card.reused")
		return existing, nil
	}
	if !isNotFound(err) {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	card, err := s.repo.Insert(ctx, s.render(holder))
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("generate card: %w", err)
	}

	core.AddSpanEvent(ctx, "card.issued",
		attribute.String("card.id", card.ID),
		attribute.String("card.version", card.Version),
	)
	return card, nil
}

// Regenerate re-renders the card from the holder's current record, keeping
// the card id. A holder without a card gets a new one.
func (s *Service) Regenerate(ctx context.Context, holder CardData) (*Card, error) {
	ctx, span := core.StartSpan(ctx, "eid.Regenerate",
		attribute.String("user.id", holder.UserID),
	)
	defer span.End()

	if err := s.ensureSchema(ctx); err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	card := s.render(holder)
	err := s.repo.UpdateSVG(ctx, card)
	if isNotFound(err) {
		return s.GenerateForUser(ctx, holder)
	}
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("regenerate card: %w", err)
	}

	core.AddSpanEvent(ctx, "card.regenerated",
		attribute.String("card.id", card.ID),
	)
	return card, nil
}

func (s *Service) Verify(ctx context.Context, shortID string) (*Verification, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	return s.repo.FindVerification(ctx, strings.ToUpper(strings.TrimSpace(shortID)))
}

func (s *Service) CountIssued(ctx context.Context, stateCode string) (int, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}

	return s.repo.Count(ctx, stateCode)
}

func (s *Service) render(holder CardData) *Card {
	return &Card{
		ID:      uuid.New().String(),
		UserID:  holder.UserID,
		ShortID: ShortID(holder.UserID),
		SVG:     s.renderer.Render(holder),
		Version: s.renderer.Version(),
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
