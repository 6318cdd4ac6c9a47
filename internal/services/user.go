package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"gatherly/internal/domain"
)

const (
	minPasswordLen  = 8
	sessionTokenLen = 32
)

var usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,32}$`)

type userService struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	hasher      domain.PasswordHasher
	tokenIssuer domain.TokenIssuer
	tokenExpiry time.Duration
	sessionTTL  time.Duration
}

// NewUserService creates a UserService with the given repositories and auth ports.
func NewUserService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	sessionTTL time.Duration,
) domain.UserService {
	return &userService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokenIssuer: tokenIssuer,
		tokenExpiry: tokenExpiry,
		sessionTTL:  sessionTTL,
	}
}

func (s *userService) Register(ctx context.Context, username, password, role, oldSession string) (*domain.AuthResult, error) {
	if !usernameRegexp.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 3-32 characters (letters, digits, . _ -)", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleOrganizer && role != domain.RoleUser {
		return nil, fmt.Errorf("%w: role must be %q or %q", domain.ErrInvalidInput, domain.RoleOrganizer, domain.RoleUser)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.NewUser(username, hash, role, time.Now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.openSession(ctx, user, oldSession)
}

func (s *userService) Login(ctx context.Context, username, password, oldSession string) (*domain.AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.Password, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.openSession(ctx, user, oldSession)
}

// openSession destroys any pre-auth session and creates a fresh one, so a
// login or registration never continues a session token the client held
// before authenticating.
func (s *userService) openSession(ctx context.Context, user *domain.User, oldSession string) (*domain.AuthResult, error) {
	if oldSession != "" {
		if err := s.sessionRepo.Delete(ctx, oldSession); err != nil {
			return nil, fmt.Errorf("destroy previous session: %w", err)
		}
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	now := time.Now()
	session := &domain.Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	bearer, err := s.tokenIssuer.Issue(user.ID, user.Username, user.Role, s.tokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		SessionToken: token,
		BearerToken:  bearer,
	}, nil
}

func (s *userService) Logout(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, sessionToken); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func generateSessionToken() (string, error) {
	b := make([]byte, sessionTokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
