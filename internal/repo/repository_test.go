package repo_test

import (
	"context"
	"testing"

	"github.com/hamed0406/healthchecker/internal/repo"
	"github.com/hamed0406/healthchecker/internal/repo/memory"
	pg "github.com/hamed0406/healthchecker/internal/repo/postgres"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.ServiceStore = memory.New()
	var _ repo.UserStore = memory.New()
	var _ repo.Pinger = memory.New()

	// Postgres store types compile against the interfaces, too.
	var _ repo.ServiceStore = (*pg.Store)(nil)
	var _ repo.UserStore = (*pg.Store)(nil)
	var _ repo.Pinger = (*pg.Store)(nil)
}

func TestSeed_CreatesAdminAndSampleOnce(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	res, err := repo.Seed(ctx, s, s, "admin", "hash")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if !res.AdminCreated || !res.SampleCreated {
		t.Fatalf("want admin and sample created, got %+v", res)
	}

	all, _ := s.List(ctx)
	if len(all) != 1 || all[0].Name != "Google" || all[0].URL != "https://www.google.com" || all[0].IntervalSeconds != 30 {
		t.Fatalf("unexpected seeded services: %+v", all)
	}

	// second run is a no-op
	res, err = repo.Seed(ctx, s, s, "admin", "other")
	if err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	if res.AdminCreated || res.SampleCreated {
		t.Fatalf("second seed should not create anything, got %+v", res)
	}
	u, err := s.GetByUsername(ctx, "admin")
	if err != nil || u.PasswordHash != "hash" {
		t.Fatalf("admin password must not be overwritten: %+v err=%v", u, err)
	}
}
