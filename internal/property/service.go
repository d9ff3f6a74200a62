// AngelaMos | 2026
// service.go

package property

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
	"github.com/carterperez-dev/templates/membership-api/internal/user"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (*Property, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Property, int, error) {
	params.StateCode = strings.ToUpper(strings.TrimSpace(params.StateCode))
	return s.repo.List(ctx, params)
}

// Create records a property. Actors confined to one state can only record
// properties there.
func (s *Service) Create(
	ctx context.Context,
	actor *user.Actor,
	req CreatePropertyRequest,
) (*Property, error) {
	stateCode := strings.ToUpper(strings.TrimSpace(req.StateCode))
	if !actor.CanSee(stateCode) {
		return nil, fmt.Errorf("create property: outside actor state: %w", core.ErrForbidden)
	}

	p := &Property{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Category:    req.Category,
		Address:     req.Address,
		StateCode:   stateCode,
		Description: req.Description,
		CreatedBy:   actor.ID,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Update(
	ctx context.Context,
	actor *user.Actor,
	id string,
	req UpdatePropertyRequest,
) (*Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSee(p.StateCode) {
		return nil, fmt.Errorf("update property: outside actor state: %w", core.ErrForbidden)
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.StateCode != nil {
		stateCode := strings.ToUpper(strings.TrimSpace(*req.StateCode))
		if !actor.CanSee(stateCode) {
			return nil, fmt.Errorf("update property: outside actor state: %w", core.ErrForbidden)
		}
		p.StateCode = stateCode
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Delete(ctx context.Context, actor *user.Actor, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanSee(p.StateCode) {
		return fmt.Errorf("delete property: outside actor state: %w", core.ErrForbidden)
	}

	return s.repo.Delete(ctx, id)
}
