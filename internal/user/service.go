// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/membership-api/internal/auth"
	"github.com/carterperez-dev/templates/membership-api/internal/core"
	"github.com/carterperez-dev/templates/membership-api/internal/role"
)

type Service struct {
	repo  Repository
	table *role.Table
}

func NewService(repo Repository, table *role.Table) *Service {
	return &Service{repo: repo, table: table}
}

// Actor is the caller of an admin operation, resolved once per request.
type Actor struct {
	ID        string
	Role      role.Role
	StateCode string
	AllStates bool
}

func (s *Service) ResolveActor(
	ctx context.Context,
	userID, roleName string,
) (*Actor, error) {
	r, err := role.Parse(roleName)
	if err != nil {
		return nil, fmt.Errorf("resolve actor: %w", core.ErrForbidden)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve actor: %w", err)
	}

	actor := &Actor{
		ID:        u.ID,
		Role:      r,
		StateCode: u.StateCode,
		AllStates: s.table.Can(r, role.AccessAllStates),
	}

	// An empty state would read as "no filter" in list and stats queries.
	if !actor.AllStates && actor.StateCode == "" {
		return nil, fmt.Errorf("resolve actor: no state on record: %w", core.ErrForbidden)
	}

	return actor, nil
}

// CanSee reports whether the actor may act on members of stateCode.
func (a *Actor) CanSee(stateCode string) bool {
	return a.AllStates || a.StateCode == stateCode
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Register creates a self-service account. It always gets the MEMBER role.
func (s *Service) Register(
	ctx context.Context,
	m auth.NewMember,
) (*auth.UserInfo, error) {
	stateCode, err := requireState(m.StateCode)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &User{
		ID:              uuid.New().String(),
		Email:           normalizeEmail(m.Email),
		PasswordHash:    m.PasswordHash,
		FullName:        strings.TrimSpace(m.FullName),
		Phone:           m.Phone,
		Role:            role.Member.String(),
		StateCode:       stateCode,
		DeploymentState: m.DeploymentState,
		ServiceYear:     m.ServiceYear,
		IsActive:        true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyProfile(user, req)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// CreateUser is the admin path. Actors confined to one state may only add
// members to it, and assigning any role above MEMBER needs the capability
// that governs role changes.
func (s *Service) CreateUser(
	ctx context.Context,
	actor *Actor,
	req CreateUserRequest,
) (*User, error) {
	stateCode, err := requireState(req.StateCode)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if !actor.CanSee(stateCode) {
		return nil, fmt.Errorf("create user: outside actor state: %w", core.ErrForbidden)
	}

	newRole := role.Member
	if req.Role != "" {
		parsed, err := role.Parse(req.Role)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", core.ErrInvalidInput)
		}
		newRole = parsed
	}
	if newRole != role.Member && !s.table.Can(actor.Role, role.DeleteUsers) {
		return nil, fmt.Errorf("create user: assign role: %w", core.ErrForbidden)
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:              uuid.New().String(),
		Email:           normalizeEmail(req.Email),
		PasswordHash:    hash,
		FullName:        strings.TrimSpace(req.FullName),
		Phone:           req.Phone,
		Role:            newRole.String(),
		StateCode:       stateCode,
		DeploymentState: req.DeploymentState,
		ServiceYear:     req.ServiceYear,
		IsActive:        true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) GetUserFor(
	ctx context.Context,
	actor *Actor,
	id string,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanSee(user.StateCode) {
		return nil, fmt.Errorf("get user: outside actor state: %w", core.ErrForbidden)
	}

	return user, nil
}

func (s *Service) UpdateUser(
	ctx context.Context,
	actor *Actor,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.GetUserFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	applyProfile(user, req.UpdateProfileRequest)
	if req.StateCode != nil {
		stateCode, err := requireState(*req.StateCode)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		if !actor.CanSee(stateCode) {
			return nil, fmt.Errorf("update user: outside actor state: %w", core.ErrForbidden)
		}
		user.StateCode = stateCode
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	id, roleName string,
) (*User, error) {
	newRole, err := role.Parse(roleName)
	if err != nil {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			roleName,
			core.ErrInvalidInput,
		)
	}

	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Demotion would open the door to deactivation.
	if target.IsSuperAdmin() && newRole != role.SuperAdmin {
		return nil, fmt.Errorf("update role: cannot demote super admin: %w", core.ErrForbidden)
	}

	if err := s.repo.UpdateRole(ctx, id, newRole.String()); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// CanDeactivate rejects any SUPER_ADMIN target, whoever is asking.
func (s *Service) CanDeactivate(target *User) error {
	if target.IsSuperAdmin() {
		return fmt.Errorf("cannot deactivate super admin: %w", core.ErrForbidden)
	}
	return nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.CanDeactivate(target); err != nil {
		return err
	}

	return s.repo.SetActive(ctx, id, false)
}

func (s *Service) Activate(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, true)
}

func (s *Service) ListUsers(
	ctx context.Context,
	actor *Actor,
	params ListUsersParams,
) ([]User, int, error) {
	if params.StateCode != "" {
		params.StateCode = normalizeState(params.StateCode)
	}
	if !actor.AllStates {
		params.StateCode = actor.StateCode
	}

	return s.repo.List(ctx, params)
}

// Stats reports membership counts, confined to the actor's state unless the
// actor may see every state.
func (s *Service) Stats(ctx context.Context, actor *Actor) (*MemberStats, error) {
	stateCode := ""
	if !actor.AllStates {
		stateCode = actor.StateCode
	}

	return s.repo.Stats(ctx, stateCode)
}

func applyProfile(user *User, req UpdateProfileRequest) {
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.DeploymentState != nil {
		user.DeploymentState = *req.DeploymentState
	}
	if req.ServiceYear != nil {
		user.ServiceYear = *req.ServiceYear
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeState(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func requireState(code string) (string, error) {
	normalized := normalizeState(code)
	if normalized == "" {
		return "", fmt.Errorf("blank state code: %w", core.ErrInvalidInput)
	}
	return normalized, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		StateCode:    u.StateCode,
		IsActive:     u.IsActive,
	}
}

var _ auth.UserProvider = (*Service)(nil)
