package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/serkansentuna34/serkan-ai-api/internal/db"
	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

// newCountsStore is the in-package twin of the integration setup: it needs
// direct pool access to seed schedule blocks, which have no write method.
func newCountsStore(t *testing.T) *Store {
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
	return NewStore(pool)
}

func seedUserAndClass(t *testing.T, store *Store) (model.User, model.Class) {
	t.Helper()
	ctx := context.Background()
	user, err := store.CreateUser(ctx, "it-"+uuid.NewString()+"@example.com",
		"$2a$10$fakefakefakefakefakefak", "Counts User", model.RoleStudent)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	class, err := store.CreateClass(ctx, "Counts Cohort "+uuid.NewString(), nil, nil,
		time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 4))
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	if err := store.AddClassMember(ctx, class.ID, user.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	return user, class
}

func TestSubmissionCountsIncludeUnpublished(t *testing.T) {
	store := newCountsStore(t)
	ctx := context.Background()
	user, class := seedUserAndClass(t, store)

	published, err := store.CreateAssignment(ctx, nil, "Published homework", nil, nil, nil, 100)
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	isPublished := true
	if _, err := store.UpdateAssignment(ctx, published.ID, nil, nil, nil, nil, nil, &isPublished); err != nil {
		t.Fatalf("publish assignment: %v", err)
	}
	draft, err := store.CreateAssignment(ctx, nil, "Draft homework", nil, nil, nil, 100)
	if err != nil {
		t.Fatalf("create draft assignment: %v", err)
	}
	for _, id := range []string{published.ID, draft.ID} {
		if err := store.AssignAssignmentToClass(ctx, class.ID, id); err != nil {
			t.Fatalf("link assignment: %v", err)
		}
	}
	content := "done"
	if _, err := store.SubmitAssignment(ctx, published.ID, user.ID, &content, nil, time.Now().UTC()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	submitted, total, err := store.SubmissionCounts(ctx, user.ID, class.ID)
	if err != nil {
		t.Fatalf("submission counts: %v", err)
	}
	// The unpublished assignment still sits in the denominator.
	if submitted != 1 || total != 2 {
		t.Fatalf("counts = %d/%d, want 1/2", submitted, total)
	}
}

func TestDayProgressCountsOnlyPresentInActiveBlocks(t *testing.T) {
	store := newCountsStore(t)
	ctx := context.Background()
	user, class := seedUserAndClass(t, store)

	seedBlock := func(title string, active bool) string {
		id := uuid.NewString()
		_, err := store.pool.Exec(ctx, `
			INSERT INTO daily_schedules (id, class_id, title, day_number, start_time, end_time, is_active)
			VALUES ($1, $2, $3, 1, '09:00:00', '10:00:00', $4)
		`, id, class.ID, title, active)
		if err != nil {
			t.Fatalf("seed block: %v", err)
		}
		return id
	}
	onTime := seedBlock("On-time block", true)
	lateBlock := seedBlock("Late block", true)
	retired := seedBlock("Retired block", false)

	now := time.Now().UTC()
	for block, status := range map[string]model.AttendanceStatus{
		onTime:    model.AttendancePresent,
		lateBlock: model.AttendanceLate,
		retired:   model.AttendancePresent,
	} {
		if _, err := store.InsertAttendanceLog(ctx, user.ID, class.ID, block, status, now); err != nil {
			t.Fatalf("insert log: %v", err)
		}
	}

	completed, total, err := store.DayProgress(ctx, user.ID, class.ID, 1)
	if err != nil {
		t.Fatalf("day progress: %v", err)
	}
	// Late check-ins and deactivated blocks both stay out of the completed
	// count, and deactivated blocks stay out of the total.
	if completed != 1 || total != 2 {
		t.Fatalf("progress = %d/%d, want 1/2", completed, total)
	}
}
