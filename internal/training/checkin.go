package training

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
)

// CheckIn records the learner's attendance for one schedule block. A learner
// checking in after the block's start time is marked late. A second check-in
// for the same block fails with ErrAlreadyCheckedIn and leaves the original
// record untouched; the unique key on (user, schedule) is the authoritative
// guard, the precedent lookup just gives the common case a clean error
// before the insert.
func (e *Engine) CheckIn(ctx context.Context, userID, scheduleID string) (model.AttendanceLog, error) {
	item, err := e.store.GetScheduleItem(ctx, scheduleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.AttendanceLog{}, ErrSessionNotFound
	}
	if err != nil {
		return model.AttendanceLog{}, err
	}

	already, err := e.store.HasAttendanceLog(ctx, userID, scheduleID)
	if err != nil {
		return model.AttendanceLog{}, err
	}
	if already {
		return model.AttendanceLog{}, ErrAlreadyCheckedIn
	}

	now := e.now()
	status := model.AttendancePresent
	// Schedule times are "HH:MM:SS" strings; lexicographic order is
	// chronological order for that format.
	if now.Format("15:04:05") > item.StartTime {
		status = model.AttendanceLate
	}

	log, err := e.store.InsertAttendanceLog(ctx, userID, item.ClassID, scheduleID, status, now)
	if repository.IsUniqueViolation(err) {
		return model.AttendanceLog{}, ErrAlreadyCheckedIn
	}
	return log, err
}
