package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Roles a user may hold. The role is fixed at registration time; there is no
// role-change operation.
const (
	RoleOrganizer = "organizer"
	RoleUser      = "user"
)

// User represents a registered account. Password holds the credential hash
// and is never serialized.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser returns a new User. ID is set by the repository on create.
func NewUser(username, passwordHash, role string, createdAt time.Time) *User {
	return &User{
		Username:  username,
		Password:  passwordHash,
		Role:      role,
		CreatedAt: createdAt,
	}
}

// PasswordHasher handles credential hashing and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues bearer tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, username, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// UserService defines registration, authentication, and profile lookups.
// Register and Login return a fresh server-side session token alongside a
// bearer token; any previous session passed in is destroyed first so a login
// never continues a pre-auth session.
type UserService interface {
	Register(ctx context.Context, username, password, role, oldSession string) (*AuthResult, error)
	Login(ctx context.Context, username, password, oldSession string) (*AuthResult, error)
	Logout(ctx context.Context, sessionToken string) error
	GetByID(ctx context.Context, id string) (*User, error)
}

// AuthResult bundles what a successful register/login produces.
type AuthResult struct {
	User         *User
	SessionToken string
	BearerToken  string
}
