package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamed0406/healthchecker/internal/domain"
)

// SampleService is created when the store starts with no services.
var SampleService = domain.Service{
	Name:            "Google",
	URL:             "https://www.google.com",
	IntervalSeconds: 30,
}

// SeedResult reports what Seed created.
type SeedResult struct {
	AdminCreated  bool
	SampleCreated bool
}

// Seed creates the admin user if missing and the sample service if the
// service table is empty. passwordHash must already be hashed.
func Seed(ctx context.Context, users UserStore, services ServiceStore, username, passwordHash string) (SeedResult, error) {
	var res SeedResult

	_, err := users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, ErrNotFound):
		u := &domain.User{Username: username, PasswordHash: passwordHash}
		if err := users.CreateUser(ctx, u); err != nil && !errors.Is(err, ErrConflict) {
			return res, fmt.Errorf("seed admin: %w", err)
		}
		res.AdminCreated = true
	case err != nil:
		return res, fmt.Errorf("lookup admin: %w", err)
	}

	all, err := services.List(ctx)
	if err != nil {
		return res, fmt.Errorf("count services: %w", err)
	}
	if len(all) == 0 {
		s := SampleService
		if err := services.Create(ctx, &s); err != nil {
			return res, fmt.Errorf("seed sample service: %w", err)
		}
		res.SampleCreated = true
	}
	return res, nil
}
