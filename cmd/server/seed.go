package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatherly/internal/domain"
)

// seedDevData inserts a demo organizer, a demo attendee, and two sample
// events when they are absent. Never runs in production.
func seedDevData(
	ctx context.Context,
	logger *slog.Logger,
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	hasher domain.PasswordHasher,
) error {
	organizer, created, err := ensureUser(ctx, userRepo, hasher, "organizer", "organizer123", domain.RoleOrganizer)
	if err != nil {
		return err
	}
	if _, _, err := ensureUser(ctx, userRepo, hasher, "user", "user12345", domain.RoleUser); err != nil {
		return err
	}
	if !created {
		return nil
	}

	now := time.Now()
	samples := []*domain.Event{
		domain.NewEvent(organizer.ID, "Go Meetup", "Talks on building concurrent services.", "Community Hall", now.AddDate(0, 0, 14), 50, now),
		domain.NewEvent(organizer.ID, "Weekend Hackathon", "48 hours, small teams, working demos.", "Tech Campus, Building B", now.AddDate(0, 1, 0), 30, now),
	}
	for _, e := range samples {
		if err := eventRepo.Create(ctx, e); err != nil {
			return fmt.Errorf("seed event %q: %w", e.Title, err)
		}
	}
	logger.Info("seeded demo accounts and events", "organizer", organizer.Username)
	return nil
}

func ensureUser(
	ctx context.Context,
	userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	username, password, role string,
) (*domain.User, bool, error) {
	existing, err := userRepo.GetByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("look up %q: %w", username, err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password for %q: %w", username, err)
	}
	user := domain.NewUser(username, hash, role, time.Now())
	if err := userRepo.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create %q: %w", username, err)
	}
	return user, true, nil
}
