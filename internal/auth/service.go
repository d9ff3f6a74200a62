// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrEmailExists        = errors.New("email already exists")
	ErrAccountInactive    = errors.New("account deactivated")
)

type UserInfo struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         string
	StateCode    string
	IsActive     bool
}

type NewMember struct {
	Email           string
	PasswordHash    string
	FullName        string
	Phone           string
	StateCode       string
	DeploymentState string
	ServiceYear     int
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Register(ctx context.Context, m NewMember) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	userProvider UserProvider
	blacklist    TokenBlacklist
	now          func() time.Time
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	userProvider UserProvider,
	blacklist TokenBlacklist,
) *Service {
	return &Service{
		repo:         repo,
		jwt:          jwt,
		userProvider: userProvider,
		blacklist:    blacklist,
		now:          time.Now,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // spends the same time as a real check
			_, _, _ = core.CheckPassword(req.Password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.userProvider.UpdatePassword(ctx, user.ID, newHash)
	}

	return s.issue(ctx, user, session{userAgent: userAgent, ipAddress: ipAddress})
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Register(ctx, NewMember{
		Email:           req.Email,
		PasswordHash:    passwordHash,
		FullName:        req.FullName,
		Phone:           req.Phone,
		StateCode:       req.StateCode,
		DeploymentState: req.DeploymentState,
		ServiceYear:     req.ServiceYear,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(ctx, user, session{userAgent: userAgent, ipAddress: ipAddress})
}

// Refresh trades a refresh token for a new pair. The old session is claimed
// before the new one is issued, so two concurrent refreshes with the same
// token cannot both succeed; the loser is treated as reuse.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	sess, err := s.repo.ByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, err
	}

	switch sess.State(s.now()) {
	case SessionRotated:
		s.revokeFamily(ctx, sess.FamilyID)
		return nil, ErrTokenReuse
	case SessionRevoked:
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	case SessionExpired:
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.userProvider.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive {
		//nolint:errcheck // account is already locked out
		_, _ = s.repo.Revoke(ctx, EverySession(user.ID))
		return nil, ErrAccountInactive
	}

	nextID := uuid.New().String()
	if err := s.repo.Rotate(ctx, sess.ID, nextID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.revokeFamily(ctx, sess.FamilyID)
			return nil, ErrTokenReuse
		}
		return nil, err
	}

	return s.issue(ctx, user, session{
		id:        nextID,
		familyID:  sess.FamilyID,
		userAgent: userAgent,
		ipAddress: ipAddress,
	})
}

func (s *Service) revokeFamily(ctx context.Context, familyID string) {
	//nolint:errcheck // the caller is rejected either way
	_, _ = s.repo.Revoke(ctx, SessionFamily(familyID))
}

// Logout ends the session behind refreshToken and, when the caller's access
// token id is known, blacklists it for the rest of its lifetime.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken, userID, accessTokenID string,
	accessExpiresAt time.Time,
) error {
	if accessTokenID != "" {
		if err := s.RevokeAccessToken(ctx, accessTokenID, accessExpiresAt); err != nil {
			return err
		}
	}

	sess, err := s.repo.ByHash(ctx, core.HashToken(refreshToken))
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if sess.UserID != userID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if _, err := s.repo.Revoke(ctx, OneSession(sess.ID)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if _, err := s.repo.Revoke(ctx, EverySession(userID)); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	return nil
}

func (s *Service) RevokeAccessToken(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	if s.blacklist == nil {
		return nil
	}

	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	return s.blacklist.Revoke(ctx, jti, ttl)
}

// IsAccessTokenBlacklisted satisfies middleware.RevocationChecker.
func (s *Service) IsAccessTokenBlacklisted(
	ctx context.Context,
	jti string,
) (bool, error) {
	if s.blacklist == nil {
		return false, nil
	}

	return s.blacklist.IsRevoked(ctx, jti)
}

func (s *Service) ActiveSessions(
	ctx context.Context,
	userID string,
) ([]SessionInfo, error) {
	active, err := s.repo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]SessionInfo, len(active))
	for i, a := range active {
		out[i] = SessionInfo{
			ID:        a.ID,
			UserAgent: a.UserAgent,
			IPAddress: a.IPAddress,
			CreatedAt: a.CreatedAt,
			ExpiresAt: a.ExpiresAt,
		}
	}

	return out, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	userID, sessionID string,
) error {
	sess, err := s.repo.ByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if sess.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}

	if _, err := s.repo.Revoke(ctx, OneSession(sessionID)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userProvider.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

func (s *Service) Me(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

type session struct {
	id        string
	familyID  string
	userAgent string
	ipAddress string
}

// issue signs an access token and stores a fresh refresh session. An empty
// familyID starts a new family.
func (s *Service) issue(
	ctx context.Context,
	user *UserInfo,
	sess session,
) (*AuthResponse, error) {
	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refresh, err := s.jwt.CreateRefreshToken(sess.familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	if sess.id == "" {
		sess.id = uuid.New().String()
	}

	err = s.repo.Insert(ctx, &Session{
		ID:        sess.id,
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		FamilyID:  refresh.FamilyID,
		ExpiresAt: refresh.ExpiresAt,
		CreatedAt: s.now(),
		UserAgent: sess.userAgent,
		IPAddress: sess.ipAddress,
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User: *toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken:  access.Token,
			RefreshToken: refresh.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(s.jwt.AccessTokenTTL() / time.Second),
			ExpiresAt:    access.ExpiresAt,
		},
	}, nil
}

func toUserResponse(u *UserInfo) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		StateCode: u.StateCode,
	}
}
