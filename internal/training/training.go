// Package training implements the short-training attendance and certificate
// eligibility pipeline: resolving a learner's active class, aggregating
// attendance and submissions, evaluating the completion thresholds, and
// maintaining the per-learner certificate record.
package training

import (
	"context"
	"errors"
	"time"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
)

var (
	// ErrNoActiveClass signals that the learner has no active class. This is
	// a legitimate terminal state, not a failure.
	ErrNoActiveClass = errors.New("training: no active class")

	// ErrSessionNotFound signals a check-in against a schedule block that
	// does not exist.
	ErrSessionNotFound = errors.New("training: schedule session not found")

	// ErrAlreadyCheckedIn signals a duplicate check-in for the same learner
	// and schedule block.
	ErrAlreadyCheckedIn = errors.New("training: already checked in")
)

// Store is the data access the engine needs. *repository.Store satisfies it;
// tests substitute a fake.
type Store interface {
	ActiveClassForUser(ctx context.Context, userID string) (model.Class, error)
	AttendanceCounts(ctx context.Context, userID, classID string) (attended, total int, err error)
	SubmissionCounts(ctx context.Context, userID, classID string) (submitted, total int, err error)
	GetCertificate(ctx context.Context, userID, classID string) (model.Certificate, error)
	CreateCertificate(ctx context.Context, userID, classID, code string) (model.Certificate, error)
	UpdateCertificateEvaluation(ctx context.Context, certificateID string, status model.CertificateState, completionPercentage int, requirementsMet []byte) (model.Certificate, error)
	GetScheduleItem(ctx context.Context, scheduleID string) (model.ScheduleItem, error)
	HasAttendanceLog(ctx context.Context, userID, scheduleID string) (bool, error)
	InsertAttendanceLog(ctx context.Context, userID, classID, scheduleID string, status model.AttendanceStatus, checkInTime time.Time) (model.AttendanceLog, error)
	DaySchedule(ctx context.Context, classID string, dayNumber int, userID string) ([]repository.ScheduleWithAttendance, error)
	DayProgress(ctx context.Context, userID, classID string, dayNumber int) (completed, total int, err error)
	TimeSpentMinutes(ctx context.Context, userID, classID string, dayNumber int) (int, error)
	ListCourseMaterials(ctx context.Context, classID string) ([]model.CourseMaterial, error)
}

// Clock supplies the current wall-clock time. Injectable so tests can pin it.
type Clock func() time.Time

type Engine struct {
	store Store
	now   Clock
}

func NewEngine(store Store, clock Clock) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{store: store, now: clock}
}
