package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"gatherly/internal/domain"
)

// emailRegexp decides whether a username doubles as a deliverable address
// for the confirmation email. Accounts are keyed by username, not email, so
// delivery is attempted only when the username looks like one.
var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	userRepo         domain.UserRepository
	notifier         domain.Notifier
	emailService     domain.EmailService
	logger           *slog.Logger
}

// NewRegistrationService creates the admission-control service. notifier and
// emailService may be nil; both are post-commit side effects and never
// affect the registration outcome.
func NewRegistrationService(
	registrationRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	notifier domain.Notifier,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		notifier:         notifier,
		emailService:     emailService,
		logger:           logger,
	}
}

// Register admits the user to the event or reports why not. The capacity and
// duplicate checks run atomically in the repository, so two racing calls for
// the last remaining slot can never both succeed, and a duplicate pair of
// calls can never produce a second row.
func (s *registrationService) Register(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	reg := domain.NewRegistration(userID, eventID, time.Now())
	if err := s.registrationRepo.CreateWithinCapacity(ctx, reg); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		case errors.Is(err, domain.ErrEventFull):
			return nil, domain.ErrEventFull
		case errors.Is(err, domain.ErrAlreadyRegistered):
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	if s.notifier != nil {
		s.notifier.RegistrationsChanged(eventID)
	}
	s.sendConfirmation(ctx, eventID, userID)

	return reg, nil
}

// sendConfirmation emails the attendee after a committed registration.
// Best-effort: any failure is logged and swallowed.
func (s *registrationService) sendConfirmation(ctx context.Context, eventID, userID string) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "confirmation email skipped", "event_id", eventID, "err", err)
		return
	}
	if !emailRegexp.MatchString(user.Username) {
		return
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		s.logger.WarnContext(ctx, "confirmation email skipped", "event_id", eventID, "err", err)
		return
	}
	data := &domain.RegistrationConfirmationEmailData{
		Email:      user.Username,
		Username:   user.Username,
		EventTitle: event.Title,
		EventDate:  event.Date.Format("January 2, 2006 15:04 MST"),
		Location:   event.Location,
	}
	if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "confirmation email failed", "event_id", eventID, "err", err)
	}
}
