package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

// Registration is the body of a sign-up request.
type Registration struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Tel      string `json:"tel" validate:"max=32"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is an issued token and the user it belongs to.
type Session struct {
	User    domain.User
	Token   string
	Expires time.Time
}

type AuthService struct {
	users  domain.UserRepository
	tokens domain.TokenManager
	hasher domain.PasswordHasher
	now    func() time.Time
}

func NewAuthService(u domain.UserRepository, t domain.TokenManager, h domain.PasswordHasher) *AuthService {
	return &AuthService{users: u, tokens: t, hasher: h, now: now}
}

// Register creates a regular user. Admins are only created by EnsureAdmin.
func (s *AuthService) Register(ctx context.Context, r Registration) (Session, error) {
	r.Email = normalizeEmail(r.Email)
	if err := domain.Validate(r); err != nil {
		return Session{}, err
	}
	u, err := s.createUser(ctx, r, domain.RoleUser)
	if err != nil {
		return Session{}, err
	}
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, c Credentials) (Session, error) {
	c.Email = normalizeEmail(c.Email)
	if err := domain.Validate(c); err != nil {
		return Session{}, err
	}
	u, err := s.users.GetUserByEmail(ctx, c.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthenticated)
	}
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	if err := s.hasher.Compare(u.PasswordHash, c.Password); err != nil {
		return Session{}, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthenticated)
	}
	return s.issue(u)
}

func (s *AuthService) Me(ctx context.Context, who domain.Identity) (domain.User, error) {
	u, err := s.users.GetUser(ctx, who.UserID)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %s: %w", who.UserID, err)
	}
	return u, nil
}

// Identify resolves a token to the caller. The user is re-read so that role
// changes and removed accounts take effect immediately.
func (s *AuthService) Identify(ctx context.Context, token string) (domain.Identity, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("verify token: %w", err)
	}
	u, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Identity{}, fmt.Errorf("token subject %s no longer exists: %w", userID, domain.ErrUnauthenticated)
	}
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{UserID: u.ID, Role: u.Role}, nil
}

// EnsureAdmin creates an admin account when none exists for email.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	u, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		if u.Role != domain.RoleAdmin {
			log.Warn().Str("email", email).Msg("bootstrap admin email belongs to a regular user")
		}
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}
	r := Registration{Name: "admin", Email: email, Password: password}
	if err := domain.Validate(r); err != nil {
		return err
	}
	if _, err := s.createUser(ctx, r, domain.RoleAdmin); err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("admin account created")
	return nil
}

func (s *AuthService) createUser(ctx context.Context, r Registration, role domain.Role) (domain.User, error) {
	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(r.Name),
		Email:        r.Email,
		Tel:          r.Tel,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := domain.Validate(u); err != nil {
		return domain.User{}, err
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.User{}, fmt.Errorf("email %s is already registered: %w", r.Email, domain.ErrConflict)
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *AuthService) issue(u domain.User) (Session, error) {
	tok, exp, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{User: u, Token: tok, Expires: exp}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
