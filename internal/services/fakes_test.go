package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gatherly/internal/domain"
)

// Hand-rolled fakes shared by the service tests.

type fakeUserRepo struct {
	createErr   error
	usersByID   map[string]*domain.User
	usersByName map[string]*domain.User
	lastCreated *domain.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.lastCreated = user
	if f.createErr != nil {
		return f.createErr
	}
	user.ID = "user-created"
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.usersByID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u, ok := f.usersByName[username]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type fakeEventRepo struct {
	createErr     error
	deleteErr     error
	eventsByID    map[string]*domain.Event
	statsByID     map[string]*domain.EventWithStats
	listResult    []*domain.EventWithStats
	listErr       error
	lastDeletedID string
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = "ev-created"
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.eventsByID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetWithStats(ctx context.Context, id, viewerID string) (*domain.EventWithStats, error) {
	if e, ok := f.statsByID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListWithStats(ctx context.Context, viewerID string) ([]*domain.EventWithStats, error) {
	return f.listResult, f.listErr
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.EventWithStats, error) {
	return f.listResult, f.listErr
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.lastDeletedID = id
	return f.deleteErr
}

// fakeRegistrationRepo enforces capacity and duplicates under a mutex, the
// same contract the Postgres transaction provides, so concurrency tests can
// race real goroutines against it.
type fakeRegistrationRepo struct {
	mu        sync.Mutex
	createErr error
	capacity  map[string]int
	admitted  map[string]map[string]bool // eventID -> userID set
}

func newFakeRegistrationRepo(capacity map[string]int) *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		capacity: capacity,
		admitted: make(map[string]map[string]bool),
	}
}

func (f *fakeRegistrationRepo) CreateWithinCapacity(ctx context.Context, reg *domain.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	max, ok := f.capacity[reg.EventID]
	if !ok {
		return domain.ErrNotFound
	}
	users := f.admitted[reg.EventID]
	if users == nil {
		users = make(map[string]bool)
		f.admitted[reg.EventID] = users
	}
	// Capacity is checked before the duplicate, matching the Postgres
	// transaction where the count runs before the insert can conflict.
	if len(users) >= max {
		return domain.ErrEventFull
	}
	if users[reg.UserID] {
		return domain.ErrAlreadyRegistered
	}
	users[reg.UserID] = true
	reg.ID = fmt.Sprintf("reg-%d", len(users))
	return nil
}

func (f *fakeRegistrationRepo) count(eventID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.admitted[eventID])
}

type fakeSessionRepo struct {
	createErr error
	deleteErr error

	mu       sync.Mutex
	sessions map[string]string // token -> userID
	deleted  []string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]string)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.Token] = s.UserID
	return nil
}

func (f *fakeSessionRepo) GetUserID(ctx context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if userID, ok := f.sessions[token]; ok {
		return userID, nil
	}
	return "", domain.ErrNotFound
}

func (f *fakeSessionRepo) Delete(ctx context.Context, token string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	f.deleted = append(f.deleted, token)
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(ctx context.Context) error { return nil }

type fakeNotifier struct {
	mu       sync.Mutex
	eventIDs []string
}

func (f *fakeNotifier) RegistrationsChanged(eventID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventIDs = append(f.eventIDs, eventID)
}

func (f *fakeNotifier) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.eventIDs...)
}

type fakeEmailService struct {
	sendErr  error
	mu       sync.Mutex
	sent     []*domain.RegistrationConfirmationEmailData
}

func (f *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return f.sendErr
}

type fakeHasher struct {
	hashErr    error
	compareErr error
}

func (f *fakeHasher) Hash(password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "hashed:" + password, nil
}

func (f *fakeHasher) Compare(hash, password string) error {
	if f.compareErr != nil {
		return f.compareErr
	}
	if hash != "hashed:"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

type fakeTokenIssuer struct {
	issueErr error
}

func (f *fakeTokenIssuer) Issue(userID, username, role string, expiry time.Duration) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return "bearer-" + userID, nil
}
