package training

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	class    model.Class
	classErr error

	attended, totalSessions     int
	submitted, totalAssignments int

	certs       map[string]model.Certificate
	createErr   error
	createCalls int
	updateCalls int

	schedule  map[string]model.ScheduleItem
	logs      map[string]model.AttendanceLog
	insertErr error

	daySchedule []repository.ScheduleWithAttendance
	completed   int
	totalBlocks int
	minutes     int
	materials   []model.CourseMaterial
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		certs:    map[string]model.Certificate{},
		schedule: map[string]model.ScheduleItem{},
		logs:     map[string]model.AttendanceLog{},
	}
}

func certKey(userID, classID string) string { return userID + "|" + classID }
func logKey(userID, scheduleID string) string { return userID + "|" + scheduleID }

func (f *fakeStore) ActiveClassForUser(_ context.Context, _ string) (model.Class, error) {
	if f.classErr != nil {
		return model.Class{}, f.classErr
	}
	return f.class, nil
}

func (f *fakeStore) AttendanceCounts(_ context.Context, _, _ string) (int, int, error) {
	return f.attended, f.totalSessions, nil
}

func (f *fakeStore) SubmissionCounts(_ context.Context, _, _ string) (int, int, error) {
	return f.submitted, f.totalAssignments, nil
}

func (f *fakeStore) GetCertificate(_ context.Context, userID, classID string) (model.Certificate, error) {
	cert, ok := f.certs[certKey(userID, classID)]
	if !ok {
		return model.Certificate{}, pgx.ErrNoRows
	}
	return cert, nil
}

func (f *fakeStore) CreateCertificate(_ context.Context, userID, classID, code string) (model.Certificate, error) {
	f.createCalls++
	if f.createErr != nil {
		return model.Certificate{}, f.createErr
	}
	cert := model.Certificate{
		ID:     "cert-" + userID,
		UserID: userID, ClassID: classID,
		Code:   code,
		Status: model.CertificatePending,
	}
	f.certs[certKey(userID, classID)] = cert
	return cert, nil
}

func (f *fakeStore) UpdateCertificateEvaluation(_ context.Context, certificateID string, status model.CertificateState, pct int, reqs []byte) (model.Certificate, error) {
	f.updateCalls++
	for key, cert := range f.certs {
		if cert.ID == certificateID {
			cert.Status = status
			cert.CompletionPercentage = pct
			cert.RequirementsMet = reqs
			f.certs[key] = cert
			return cert, nil
		}
	}
	return model.Certificate{}, pgx.ErrNoRows
}

func (f *fakeStore) GetScheduleItem(_ context.Context, scheduleID string) (model.ScheduleItem, error) {
	item, ok := f.schedule[scheduleID]
	if !ok {
		return model.ScheduleItem{}, pgx.ErrNoRows
	}
	return item, nil
}

func (f *fakeStore) HasAttendanceLog(_ context.Context, userID, scheduleID string) (bool, error) {
	_, ok := f.logs[logKey(userID, scheduleID)]
	return ok, nil
}

func (f *fakeStore) InsertAttendanceLog(_ context.Context, userID, classID, scheduleID string, status model.AttendanceStatus, checkInTime time.Time) (model.AttendanceLog, error) {
	if f.insertErr != nil {
		return model.AttendanceLog{}, f.insertErr
	}
	log := model.AttendanceLog{
		ID:     "log-" + scheduleID,
		UserID: userID, ClassID: classID, ScheduleID: scheduleID,
		Status: status, CheckInTime: checkInTime,
	}
	f.logs[logKey(userID, scheduleID)] = log
	return log, nil
}

func (f *fakeStore) DaySchedule(_ context.Context, _ string, _ int, _ string) ([]repository.ScheduleWithAttendance, error) {
	return f.daySchedule, nil
}

func (f *fakeStore) DayProgress(_ context.Context, _, _ string, _ int) (int, int, error) {
	return f.completed, f.totalBlocks, nil
}

func (f *fakeStore) TimeSpentMinutes(_ context.Context, _, _ string, _ int) (int, error) {
	return f.minutes, nil
}

func (f *fakeStore) ListCourseMaterials(_ context.Context, _ string) ([]model.CourseMaterial, error) {
	return f.materials, nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func testClass() model.Class {
	return model.Class{
		ID:        "class-1",
		Name:      "Applied AI Bootcamp",
		StartDate: date(2026, time.March, 2),
		EndDate:   date(2026, time.March, 6),
		IsActive:  true,
	}
}

func TestCertificateStatusNoActiveClass(t *testing.T) {
	store := newFakeStore()
	store.classErr = pgx.ErrNoRows
	engine := NewEngine(store, fixedClock(date(2026, time.March, 3)))

	status, err := engine.CertificateStatus(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CertificateStatus: %v", err)
	}
	if status.HasActiveClass {
		t.Fatal("HasActiveClass = true, want false")
	}
	if status.Certificate != nil {
		t.Fatal("Certificate set for learner without a class")
	}
	if store.createCalls != 0 {
		t.Fatalf("createCalls = %d, want 0", store.createCalls)
	}
}

func TestCertificateStatusCreatesRecord(t *testing.T) {
	store := newFakeStore()
	store.class = testClass()
	store.attended, store.totalSessions = 8, 10
	store.submitted, store.totalAssignments = 5, 5
	engine := NewEngine(store, fixedClock(time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)))

	status, err := engine.CertificateStatus(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CertificateStatus: %v", err)
	}
	if !status.HasActiveClass {
		t.Fatal("HasActiveClass = false")
	}
	if status.DayNumber != 2 || status.TotalDays != 5 {
		t.Fatalf("day %d/%d, want 2/5", status.DayNumber, status.TotalDays)
	}
	if status.Certificate == nil {
		t.Fatal("Certificate missing")
	}
	if !strings.HasPrefix(status.Certificate.Code, "CERT-") {
		t.Fatalf("Code = %q, want CERT- prefix", status.Certificate.Code)
	}
	if status.Certificate.Status != model.CertificateRequirementsMet {
		t.Fatalf("Status = %q, want requirements_met", status.Certificate.Status)
	}
	if !status.CanDownload {
		t.Fatal("CanDownload = false")
	}
	if status.OverallCompletion != 90 {
		t.Fatalf("OverallCompletion = %d, want 90", status.OverallCompletion)
	}
	if got := status.Requirements.Attendance; !got.Met || got.Percentage != 80 || got.Attended != 8 || got.Total != 10 {
		t.Fatalf("attendance requirement = %+v", got)
	}
}

func TestCertificateStatusIdempotentRead(t *testing.T) {
	store := newFakeStore()
	store.class = testClass()
	store.attended, store.totalSessions = 3, 10
	store.submitted, store.totalAssignments = 1, 5
	engine := NewEngine(store, fixedClock(date(2026, time.March, 4)))

	first, err := engine.CertificateStatus(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("first CertificateStatus: %v", err)
	}
	second, err := engine.CertificateStatus(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("second CertificateStatus: %v", err)
	}
	if first.OverallCompletion != second.OverallCompletion || first.Certificate.Status != second.Certificate.Status {
		t.Fatalf("reads differ: %+v vs %+v", first, second)
	}
	if store.createCalls != 1 {
		t.Fatalf("createCalls = %d, want 1", store.createCalls)
	}
	if len(store.certs) != 1 {
		t.Fatalf("certificate rows = %d, want 1", len(store.certs))
	}
}

func TestCertificateStatusCanRegress(t *testing.T) {
	store := newFakeStore()
	store.class = testClass()
	store.attended, store.totalSessions = 10, 10
	store.submitted, store.totalAssignments = 5, 5
	engine := NewEngine(store, fixedClock(date(2026, time.March, 4)))

	status, err := engine.CertificateStatus(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CertificateStatus: %v", err)
	}
	if status.Certificate.Status != model.CertificateRequirementsMet {
		t.Fatalf("Status = %q, want requirements_met", status.Certificate.Status)
	}

	// A submission removed upstream drops the learner back under the bar.
	store.submitted = 3
	status, err = engine.CertificateStatus(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CertificateStatus after regression: %v", err)
	}
	if status.Certificate.Status != model.CertificatePending {
		t.Fatalf("Status = %q, want pending", status.Certificate.Status)
	}
	if status.CanDownload {
		t.Fatal("CanDownload = true after regression")
	}
}

func TestCertificateCreationRaceReReadsWinner(t *testing.T) {
	store := newFakeStore()
	store.class = testClass()
	store.attended, store.totalSessions = 8, 10
	store.createErr = &pgconn.PgError{Code: "23505"}
	winner := model.Certificate{ID: "cert-winner", UserID: "user-1", ClassID: "class-1", Code: "CERT-1-winner"}

	// Simulate the concurrent creator winning between our read and insert:
	// the hook fires after each read, so planting the row after the first
	// (empty) read means the insert conflicts and the re-read finds it.
	store.certs = map[string]model.Certificate{}
	engine := NewEngine(&raceStore{fakeStore: store, onGet: func() {
		store.certs[certKey("user-1", "class-1")] = winner
	}}, fixedClock(date(2026, time.March, 4)))

	status, err := engine.CertificateStatus(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CertificateStatus: %v", err)
	}
	if status.Certificate.ID != "cert-winner" {
		t.Fatalf("Certificate.ID = %q, want the winner's row", status.Certificate.ID)
	}
}

// raceStore lets a test mutate the fake between certificate reads.
type raceStore struct {
	*fakeStore
	onGet func()
}

func (r *raceStore) GetCertificate(ctx context.Context, userID, classID string) (model.Certificate, error) {
	cert, err := r.fakeStore.GetCertificate(ctx, userID, classID)
	r.onGet()
	return cert, err
}

func TestCheckIn(t *testing.T) {
	makeStore := func() *fakeStore {
		store := newFakeStore()
		store.schedule["sched-1"] = model.ScheduleItem{
			ID: "sched-1", ClassID: "class-1", Title: "Morning session",
			DayNumber: 1, StartTime: "09:00:00", EndTime: "10:30:00", IsActive: true,
		}
		return store
	}

	t.Run("on time is present", func(t *testing.T) {
		store := makeStore()
		engine := NewEngine(store, fixedClock(time.Date(2026, time.March, 2, 8, 55, 0, 0, time.UTC)))
		log, err := engine.CheckIn(context.Background(), "user-1", "sched-1")
		if err != nil {
			t.Fatalf("CheckIn: %v", err)
		}
		if log.Status != model.AttendancePresent {
			t.Fatalf("Status = %q, want present", log.Status)
		}
	})

	t.Run("after start is late", func(t *testing.T) {
		store := makeStore()
		engine := NewEngine(store, fixedClock(time.Date(2026, time.March, 2, 9, 5, 0, 0, time.UTC)))
		log, err := engine.CheckIn(context.Background(), "user-1", "sched-1")
		if err != nil {
			t.Fatalf("CheckIn: %v", err)
		}
		if log.Status != model.AttendanceLate {
			t.Fatalf("Status = %q, want late", log.Status)
		}
	})

	t.Run("exactly at start is present", func(t *testing.T) {
		store := makeStore()
		engine := NewEngine(store, fixedClock(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)))
		log, err := engine.CheckIn(context.Background(), "user-1", "sched-1")
		if err != nil {
			t.Fatalf("CheckIn: %v", err)
		}
		if log.Status != model.AttendancePresent {
			t.Fatalf("Status = %q, want present", log.Status)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		store := makeStore()
		engine := NewEngine(store, fixedClock(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)))
		_, err := engine.CheckIn(context.Background(), "user-1", "missing")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("err = %v, want ErrSessionNotFound", err)
		}
	})

	t.Run("second check-in rejected and original kept", func(t *testing.T) {
		store := makeStore()
		engine := NewEngine(store, fixedClock(time.Date(2026, time.March, 2, 8, 55, 0, 0, time.UTC)))
		first, err := engine.CheckIn(context.Background(), "user-1", "sched-1")
		if err != nil {
			t.Fatalf("first CheckIn: %v", err)
		}
		_, err = engine.CheckIn(context.Background(), "user-1", "sched-1")
		if !errors.Is(err, ErrAlreadyCheckedIn) {
			t.Fatalf("err = %v, want ErrAlreadyCheckedIn", err)
		}
		kept := store.logs[logKey("user-1", "sched-1")]
		if kept.Status != first.Status || !kept.CheckInTime.Equal(first.CheckInTime) {
			t.Fatalf("original record changed: %+v", kept)
		}
	})

	t.Run("unique violation on insert maps to conflict", func(t *testing.T) {
		store := makeStore()
		store.insertErr = &pgconn.PgError{Code: "23505"}
		engine := NewEngine(store, fixedClock(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)))
		_, err := engine.CheckIn(context.Background(), "user-1", "sched-1")
		if !errors.Is(err, ErrAlreadyCheckedIn) {
			t.Fatalf("err = %v, want ErrAlreadyCheckedIn", err)
		}
	})
}

func TestTodaySchedule(t *testing.T) {
	store := newFakeStore()
	store.class = testClass()
	checkIn := time.Date(2026, time.March, 2, 8, 55, 0, 0, time.UTC)
	status := model.AttendancePresent
	store.daySchedule = []repository.ScheduleWithAttendance{
		{
			Item:     model.ScheduleItem{ID: "sched-1", Title: "Morning session", StartTime: "09:00:00", EndTime: "10:30:00"},
			Attended: true, Status: &status, CheckInTime: &checkIn,
		},
		{
			Item: model.ScheduleItem{ID: "sched-2", Title: "Lab", StartTime: "11:00:00", EndTime: "12:30:00"},
		},
	}
	engine := NewEngine(store, fixedClock(date(2026, time.March, 2)))

	today, err := engine.TodaySchedule(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("TodaySchedule: %v", err)
	}
	if today.DayNumber != 1 {
		t.Fatalf("DayNumber = %d, want 1", today.DayNumber)
	}
	if len(today.Schedule) != 2 {
		t.Fatalf("schedule length = %d, want 2", len(today.Schedule))
	}
	if !today.Schedule[0].Attended || today.Schedule[0].AttendanceStatus == nil {
		t.Fatalf("first entry not annotated: %+v", today.Schedule[0])
	}
	if today.Schedule[1].Attended {
		t.Fatal("second entry marked attended")
	}
}

func TestTodayScheduleBeforeStartIsEmpty(t *testing.T) {
	store := newFakeStore()
	store.class = testClass()
	store.daySchedule = []repository.ScheduleWithAttendance{
		{Item: model.ScheduleItem{ID: "sched-1"}},
	}
	engine := NewEngine(store, fixedClock(date(2026, time.February, 20)))

	today, err := engine.TodaySchedule(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("TodaySchedule: %v", err)
	}
	if today.DayNumber >= 1 {
		t.Fatalf("DayNumber = %d, want < 1", today.DayNumber)
	}
	if len(today.Schedule) != 0 {
		t.Fatalf("schedule length = %d, want 0", len(today.Schedule))
	}
}

func TestDayTracking(t *testing.T) {
	store := newFakeStore()
	store.class = testClass()
	store.completed, store.totalBlocks, store.minutes = 2, 4, 180
	engine := NewEngine(store, fixedClock(date(2026, time.March, 3)))

	tracking, err := engine.DayTracking(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("DayTracking: %v", err)
	}
	if tracking.DayNumber != 2 {
		t.Fatalf("DayNumber = %d, want 2", tracking.DayNumber)
	}
	if tracking.CompletedModules != 2 || tracking.TotalModules != 4 || tracking.TimeSpentMinutes != 180 {
		t.Fatalf("tracking = %+v", tracking)
	}
}
