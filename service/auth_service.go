package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatiip-backend/logger"
	"chatiip-backend/models"
	"chatiip-backend/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// Claims are the session token contents
type Claims struct {
	UserID string      `json:"id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the session belongs to an admin
func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// AuthService issues and verifies session tokens
type AuthService struct {
	users  UserRepository
	secret []byte
	ttl    time.Duration
	log    *logger.Logger
	now    func() time.Time
}

// AuthServiceOption is a functional option for AuthService
type AuthServiceOption func(*AuthService)

// WithUserRepository sets the user repository
func WithUserRepository(repo UserRepository) AuthServiceOption {
	return func(s *AuthService) {
		s.users = repo
	}
}

// WithJWTSecret sets the HMAC signing key
func WithJWTSecret(secret string) AuthServiceOption {
	return func(s *AuthService) {
		s.secret = []byte(secret)
	}
}

// WithTokenTTL sets how long issued tokens stay valid
func WithTokenTTL(ttl time.Duration) AuthServiceOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithAuthLogger sets the logger
func WithAuthLogger(log *logger.Logger) AuthServiceOption {
	return func(s *AuthService) {
		if log != nil {
			s.log = log
		}
	}
}

// WithAuthClock overrides time.Now
func WithAuthClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAuthService creates a new auth service
func NewAuthService(opts ...AuthServiceOption) *AuthService {
	s := &AuthService{ttl: defaultTokenTTL, log: logger.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the token lifetime
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// LoginResult holds an issued token and its owner
type LoginResult struct {
	Token string
	User  *models.User
}

// Login checks credentials and issues a signed token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Info("login rejected", "email", email)
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	s.log.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResult{Token: token, User: user}, nil
}

// IssueToken signs an HS256 token for user
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("jwt secret not set")
	}
	now := s.now()
	claims := Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns its claims
func (s *AuthService) ParseToken(token string) (*Claims, error) {
	if token == "" || len(s.secret) == 0 {
		return nil, ErrUnauthorized
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims, nil
}

// CreateUser hashes password and stores a new account
func (s *AuthService) CreateUser(ctx context.Context, email, password, name string, role models.Role) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if role == "" {
		role = models.RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Email: email, PasswordHash: string(hash), Name: name, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: email %q already registered", ErrConflict, email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates the admin account unless the email already exists.
// It reports whether an account was created
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("load admin: %w", err)
	}
	if _, err := s.CreateUser(ctx, email, password, "Admin", models.RoleAdmin); err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, err
	}
	s.log.Info("default admin created", "email", email)
	return true, nil
}

// ListUsersResult represents one page of users
type ListUsersResult struct {
	Items []*models.User `json:"items"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int64          `json:"total"`
}

// ListUsers pages through accounts, optionally matching q against email
// or name
func (s *AuthService) ListUsers(ctx context.Context, q string, page, limit int) (*ListUsersResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	items, total, err := s.users.List(ctx, strings.TrimSpace(q), limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if items == nil {
		items = []*models.User{}
	}
	return &ListUsersResult{Items: items, Page: page, Limit: limit, Total: total}, nil
}

// GetUser fetches one account
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
