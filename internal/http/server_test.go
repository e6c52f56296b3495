package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/serkansentuna34/serkan-ai-api/internal/auth"
	"github.com/serkansentuna34/serkan-ai-api/internal/config"
	"github.com/serkansentuna34/serkan-ai-api/internal/model"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
	"github.com/serkansentuna34/serkan-ai-api/internal/training"
)

const (
	testSecret = "unit-test-secret"
	testIssuer = "serkan-ai-api-test"
)

// trainingStoreStub satisfies training.Store with canned data so the
// short-training endpoints can be exercised without Postgres.
type trainingStoreStub struct {
	class        model.Class
	hasClass     bool
	schedule     map[string]model.ScheduleItem
	checkedIn    map[string]bool
	certificates map[string]model.Certificate
	attended     int
	sessions     int
	submitted    int
	assignments  int
}

func (f *trainingStoreStub) ActiveClassForUser(ctx context.Context, userID string) (model.Class, error) {
	if !f.hasClass {
		return model.Class{}, pgx.ErrNoRows
	}
	return f.class, nil
}

func (f *trainingStoreStub) AttendanceCounts(ctx context.Context, userID, classID string) (int, int, error) {
	return f.attended, f.sessions, nil
}

func (f *trainingStoreStub) SubmissionCounts(ctx context.Context, userID, classID string) (int, int, error) {
	return f.submitted, f.assignments, nil
}

func (f *trainingStoreStub) GetCertificate(ctx context.Context, userID, classID string) (model.Certificate, error) {
	cert, ok := f.certificates[userID+"|"+classID]
	if !ok {
		return model.Certificate{}, pgx.ErrNoRows
	}
	return cert, nil
}

func (f *trainingStoreStub) CreateCertificate(ctx context.Context, userID, classID, code string) (model.Certificate, error) {
	cert := model.Certificate{ID: "cert-1", UserID: userID, ClassID: classID, Code: code, Status: model.CertificatePending}
	f.certificates[userID+"|"+classID] = cert
	return cert, nil
}

func (f *trainingStoreStub) UpdateCertificateEvaluation(ctx context.Context, certificateID string, status model.CertificateState, completionPercentage int, requirementsMet []byte) (model.Certificate, error) {
	for key, cert := range f.certificates {
		if cert.ID == certificateID {
			cert.Status = status
			cert.CompletionPercentage = completionPercentage
			cert.RequirementsMet = requirementsMet
			f.certificates[key] = cert
			return cert, nil
		}
	}
	return model.Certificate{}, pgx.ErrNoRows
}

func (f *trainingStoreStub) GetScheduleItem(ctx context.Context, scheduleID string) (model.ScheduleItem, error) {
	item, ok := f.schedule[scheduleID]
	if !ok {
		return model.ScheduleItem{}, pgx.ErrNoRows
	}
	return item, nil
}

func (f *trainingStoreStub) HasAttendanceLog(ctx context.Context, userID, scheduleID string) (bool, error) {
	return f.checkedIn[userID+"|"+scheduleID], nil
}

func (f *trainingStoreStub) InsertAttendanceLog(ctx context.Context, userID, classID, scheduleID string, status model.AttendanceStatus, checkInTime time.Time) (model.AttendanceLog, error) {
	f.checkedIn[userID+"|"+scheduleID] = true
	return model.AttendanceLog{ID: "log-1", UserID: userID, ClassID: classID, ScheduleID: scheduleID, Status: status, CheckInTime: checkInTime}, nil
}

func (f *trainingStoreStub) DaySchedule(ctx context.Context, classID string, dayNumber int, userID string) ([]repository.ScheduleWithAttendance, error) {
	return nil, nil
}

func (f *trainingStoreStub) DayProgress(ctx context.Context, userID, classID string, dayNumber int) (int, int, error) {
	return 0, 0, nil
}

func (f *trainingStoreStub) TimeSpentMinutes(ctx context.Context, userID, classID string, dayNumber int) (int, error) {
	return 0, nil
}

func (f *trainingStoreStub) ListCourseMaterials(ctx context.Context, classID string) ([]model.CourseMaterial, error) {
	return nil, nil
}

func newStub() *trainingStoreStub {
	return &trainingStoreStub{
		hasClass: true,
		class: model.Class{
			ID:        "22222222-2222-4222-8222-222222222222",
			Name:      "Applied AI Bootcamp",
			StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
			IsActive:  true,
		},
		schedule:     map[string]model.ScheduleItem{},
		checkedIn:    map[string]bool{},
		certificates: map[string]model.Certificate{},
		attended:     8,
		sessions:     10,
		submitted:    5,
		assignments:  5,
	}
}

func newTestServer(stub *trainingStoreStub) *Server {
	cfg := config.Config{JWTSecret: testSecret, JWTIssuer: testIssuer}
	clock := func() time.Time {
		return time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC)
	}
	engine := training.NewEngine(stub, clock)
	return NewServer(cfg, nil, engine, nil, nil, nil, zap.NewNop())
}

func mintToken(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := auth.NewAccessToken(testSecret, testIssuer, 15*time.Minute, auth.Claims{
		UserID: userID,
		Email:  userID + "@example.com",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

const testUserID = "11111111-1111-4111-8111-111111111111"

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(newStub())
	probe := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || claims.UserID != testUserID {
			t.Fatalf("expected claims in context, got %+v", claims)
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	probe.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	probe.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testUserID, "student"))
	probe.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	s := newTestServer(newStub())
	probe := s.authMiddleware(s.requireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testUserID, "student"))
	probe.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testUserID, "admin"))
	probe.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestRateLimitNoRedisIsPassthrough(t *testing.T) {
	s := newTestServer(newStub())
	probe := s.rateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	probe.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through without redis, got %d", rec.Code)
	}
}

func TestCertificateStatusEndpoint(t *testing.T) {
	s := newTestServer(newStub())
	router := s.Router()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/short-training/certificate-status", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testUserID, "student"))
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		HasActiveClass    bool   `json:"hasActiveClass"`
		ClassName         string `json:"className"`
		DayNumber         int    `json:"dayNumber"`
		TotalDays         int    `json:"totalDays"`
		OverallCompletion int    `json:"overallCompletion"`
		CanDownload       bool   `json:"canDownload"`
		Certificate       *struct {
			Code   string `json:"code"`
			Status string `json:"status"`
		} `json:"certificate"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.HasActiveClass || resp.ClassName != "Applied AI Bootcamp" {
		t.Fatalf("unexpected class info: %+v", resp)
	}
	if resp.DayNumber != 2 || resp.TotalDays != 5 {
		t.Fatalf("expected day 2 of 5, got %d of %d", resp.DayNumber, resp.TotalDays)
	}
	// 80% attendance and 100% submissions round to an overall of 90.
	if resp.OverallCompletion != 90 || !resp.CanDownload {
		t.Fatalf("expected eligible at 90%%, got %+v", resp)
	}
	if resp.Certificate == nil || !strings.HasPrefix(resp.Certificate.Code, "CERT-") {
		t.Fatalf("expected issued certificate code, got %+v", resp.Certificate)
	}
}

func TestCertificateStatusEndpointNoClass(t *testing.T) {
	stub := newStub()
	stub.hasClass = false
	s := newTestServer(stub)
	router := s.Router()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/short-training/certificate-status", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testUserID, "student"))
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for missing class, got %d", rec.Code)
	}
	var resp struct {
		HasActiveClass bool `json:"hasActiveClass"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.HasActiveClass {
		t.Fatalf("expected hasActiveClass=false")
	}
}

func TestCheckInEndpoint(t *testing.T) {
	stub := newStub()
	scheduleID := "33333333-3333-4333-8333-333333333333"
	stub.schedule[scheduleID] = model.ScheduleItem{
		ID:        scheduleID,
		ClassID:   stub.class.ID,
		Title:     "Prompt Engineering Lab",
		DayNumber: 2,
		StartTime: "09:00:00",
		EndTime:   "10:30:00",
		IsActive:  true,
	}
	s := newTestServer(stub)
	router := s.Router()
	token := mintToken(t, testUserID, "student")

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/short-training/check-in", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := post(`{"scheduleId":"` + scheduleID + `"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Clock stands at 09:30, the block started 09:00.
	if resp.Status != "late" {
		t.Fatalf("expected late check-in, got %q", resp.Status)
	}

	rec = post(`{"scheduleId":"` + scheduleID + `"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", rec.Code)
	}

	rec = post(`{"scheduleId":"44444444-4444-4444-8444-444444444444"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rec.Code)
	}

	rec = post(`{"scheduleId":"nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}
