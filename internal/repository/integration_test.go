package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/serkansentuna34/serkan-ai-api/internal/db"
	"github.com/serkansentuna34/serkan-ai-api/internal/model"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
)

// newIntegrationStore connects to TEST_DATABASE_URL and applies migrations.
// Without the env var the test is skipped.
func newIntegrationStore(t *testing.T) *repository.Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("set TEST_DATABASE_URL to run")
	}
	if err := db.Migrate(url); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := db.NewPool(context.Background(), url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return repository.NewStore(pool)
}

func createTestUser(t *testing.T, store *repository.Store) model.User {
	t.Helper()
	email := "it-" + uuid.NewString() + "@example.com"
	user, err := store.CreateUser(context.Background(), email, "$2a$10$fakefakefakefakefakefak", "Integration User", model.RoleStudent)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestActiveClassResolution(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()
	user := createTestUser(t, store)

	if _, err := store.ActiveClassForUser(ctx, user.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected no rows without membership, got %v", err)
	}

	older, err := store.CreateClass(ctx, "Older Cohort "+uuid.NewString(), nil, nil,
		time.Now().AddDate(0, 0, -30), time.Now().AddDate(0, 0, -25))
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	newer, err := store.CreateClass(ctx, "Newer Cohort "+uuid.NewString(), nil, nil,
		time.Now().AddDate(0, 0, -2), time.Now().AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	for _, class := range []model.Class{older, newer} {
		if err := store.AddClassMember(ctx, class.ID, user.ID); err != nil {
			t.Fatalf("add member: %v", err)
		}
	}

	active, err := store.ActiveClassForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("resolve active class: %v", err)
	}
	if active.ID != newer.ID {
		t.Fatalf("expected most recent start date to win, got %s", active.Name)
	}

	// Deactivating the newer class should fall back to the older one.
	inactive := false
	if _, err := store.UpdateClass(ctx, newer.ID, nil, nil, nil, nil, nil, &inactive); err != nil {
		t.Fatalf("deactivate class: %v", err)
	}
	active, err = store.ActiveClassForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("resolve after deactivation: %v", err)
	}
	if active.ID != older.ID {
		t.Fatalf("expected fallback to older class, got %s", active.Name)
	}
}

func TestDuplicateMembershipConflicts(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()
	user := createTestUser(t, store)

	class, err := store.CreateClass(ctx, "Conflict Cohort "+uuid.NewString(), nil, nil,
		time.Now(), time.Now().AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	if err := store.AddClassMember(ctx, class.ID, user.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	err = store.AddClassMember(ctx, class.ID, user.ID)
	if !repository.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation on duplicate membership, got %v", err)
	}
}

func TestCertificateUniquePerUserAndClass(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()
	user := createTestUser(t, store)

	class, err := store.CreateClass(ctx, "Cert Cohort "+uuid.NewString(), nil, nil,
		time.Now(), time.Now().AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("create class: %v", err)
	}

	if _, err := store.GetCertificate(ctx, user.ID, class.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected no certificate yet, got %v", err)
	}
	cert, err := store.CreateCertificate(ctx, user.ID, class.ID, "CERT-1-"+user.ID[:8])
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	_, err = store.CreateCertificate(ctx, user.ID, class.ID, "CERT-2-"+user.ID[:8])
	if !repository.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation on second certificate, got %v", err)
	}

	updated, err := store.UpdateCertificateEvaluation(ctx, cert.ID, model.CertificateRequirementsMet, 92, []byte(`{"attendance":true,"assignments":true}`))
	if err != nil {
		t.Fatalf("update evaluation: %v", err)
	}
	if updated.Status != model.CertificateRequirementsMet || updated.CompletionPercentage != 92 {
		t.Fatalf("unexpected evaluation: %+v", updated)
	}
}
