package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/repo"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestPostgresStore_ServiceCRUD(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	svc := &domain.Service{
		Name:            fmt.Sprintf("test-%d", time.Now().UTC().UnixNano()),
		URL:             "https://example.com",
		IntervalSeconds: 15,
	}
	if err := store.Create(ctx, svc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if svc.ID == 0 {
		t.Fatalf("expected ID to be set")
	}
	defer store.Delete(ctx, svc.ID)

	got, err := store.Get(ctx, svc.ID)
	if err != nil || got.Name != svc.Name || got.IntervalSeconds != 15 {
		t.Fatalf("Get: %+v err=%v", got, err)
	}

	url := "https://example.org"
	updated, err := store.Update(ctx, svc.ID, domain.ServicePatch{URL: &url})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.URL != url || updated.Name != svc.Name {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, x := range list {
		if x.ID == svc.ID {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("created service not found in list; got %d rows", len(list))
	}

	if err := store.Delete(ctx, svc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, svc.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}

func TestPostgresStore_UserConflict(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	name := fmt.Sprintf("user-%d", time.Now().UTC().UnixNano())
	u := &domain.User{Username: name, PasswordHash: "h"}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := store.CreateUser(ctx, &domain.User{Username: name, PasswordHash: "h"}); !errors.Is(err, repo.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	if err := store.UpdatePassword(ctx, u.ID, "h2"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	got, err := store.GetByUsername(ctx, name)
	if err != nil || got.PasswordHash != "h2" {
		t.Fatalf("GetByUsername: %+v err=%v", got, err)
	}
}
