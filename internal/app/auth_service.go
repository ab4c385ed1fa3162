package app

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"ecoquiz-service/internal/domain"
	"ecoquiz-service/internal/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore persists user accounts. Email is unique.
type UserStore interface {
	// Insert stores a new user; domain.ErrEmailTaken on a duplicate email.
	Insert(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// Update overwrites email and hash of an existing user.
	Update(ctx context.Context, user domain.User) error
	Delete(ctx context.Context, id string) error
}

// TokenIssuer signs and verifies bearer tokens bound to a user's email.
type TokenIssuer interface {
	Issue(user domain.User) (string, error)
	// Subject returns the email carried by a valid token.
	Subject(token string) (string, error)
}

// Token is the bearer credential handed out on login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthService registers users and checks their credentials.
type AuthService struct {
	users    UserStore
	tokens   TokenIssuer
	log      *logger.Logger
	now      func() time.Time
	newID    func() string
	hashCost int
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) AuthOption {
	return func(s *AuthService) { s.hashCost = cost }
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(users UserStore, tokens TokenIssuer, log *logger.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:    users,
		tokens:   tokens,
		log:      log.With("service", "auth"),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account with a hashed password.
func (s *AuthService) Register(ctx context.Context, email, password string) (domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.User{}, err
	}
	if strings.TrimSpace(password) == "" {
		return domain.User{}, domain.Invalid("password is required")
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{ID: s.newID(), Email: email, PasswordHash: hash, CreatedAt: s.now()}
	if err := s.users.Insert(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.log.Info("user registered", "user", user.ID)
	return user, nil
}

// Login verifies the password and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return Token{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Token{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return Token{}, domain.ErrInvalidCredentials
	}
	signed, err := s.tokens.Issue(user)
	if err != nil {
		return Token{}, fmt.Errorf("issue token: %w", err)
	}
	return Token{AccessToken: signed, TokenType: "bearer"}, nil
}

// Authenticate resolves a bearer token to its user. Nothing is cached between calls.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return domain.User{}, domain.ErrInvalidToken
	}
	email, err := s.tokens.Subject(token)
	if err != nil {
		return domain.User{}, domain.ErrInvalidToken
	}
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, domain.ErrInvalidToken
	}
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateUser changes email and/or password. The password is re-hashed.
func (s *AuthService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return domain.User{}, err
		}
		if email != user.Email {
			if other, err := s.users.GetByEmail(ctx, email); err == nil && other.ID != user.ID {
				return domain.User{}, domain.ErrEmailTaken
			} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
				return domain.User{}, err
			}
		}
		user.Email = email
	}
	if patch.Password != nil {
		if strings.TrimSpace(*patch.Password) == "" {
			return domain.User{}, domain.Invalid("password must not be empty")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), s.hashCost)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if err := s.users.Update(ctx, user); err != nil {
		return domain.User{}, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.Invalid("email is required")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", domain.Invalid("malformed email %q", raw)
	}
	return addr.Address, nil
}
