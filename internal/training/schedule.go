package training

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

// ScheduleEntry is one schedule block annotated with the learner's check-in
// state.
type ScheduleEntry struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	Description      *string                 `json:"description"`
	StartTime        string                  `json:"startTime"`
	EndTime          string                  `json:"endTime"`
	ModuleType       *string                 `json:"moduleType"`
	Attended         bool                    `json:"attended"`
	AttendanceStatus *model.AttendanceStatus `json:"attendanceStatus"`
	CheckInTime      *time.Time              `json:"checkInTime"`
}

// TodaySchedule is the learner's schedule for the current training day.
type TodaySchedule struct {
	HasActiveClass bool            `json:"hasActiveClass"`
	ClassName      string          `json:"className,omitempty"`
	DayNumber      int             `json:"dayNumber,omitempty"`
	TotalDays      int             `json:"totalDays,omitempty"`
	Schedule       []ScheduleEntry `json:"schedule"`
}

// TodaySchedule returns the active schedule blocks for the learner's current
// training day. Before the class starts or after it ends the day number is
// out of range and the schedule list is empty.
func (e *Engine) TodaySchedule(ctx context.Context, userID string) (TodaySchedule, error) {
	class, err := e.store.ActiveClassForUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return TodaySchedule{HasActiveClass: false, Schedule: []ScheduleEntry{}}, nil
	}
	if err != nil {
		return TodaySchedule{}, err
	}

	dayNumber := DayNumber(class.StartDate, e.now())
	result := TodaySchedule{
		HasActiveClass: true,
		ClassName:      class.Name,
		DayNumber:      dayNumber,
		TotalDays:      TotalDays(class.StartDate, class.EndDate),
		Schedule:       []ScheduleEntry{},
	}
	if dayNumber < 1 {
		return result, nil
	}

	rows, err := e.store.DaySchedule(ctx, class.ID, dayNumber, userID)
	if err != nil {
		return TodaySchedule{}, err
	}
	for _, row := range rows {
		result.Schedule = append(result.Schedule, ScheduleEntry{
			ID:               row.Item.ID,
			Title:            row.Item.Title,
			Description:      row.Item.Description,
			StartTime:        row.Item.StartTime,
			EndTime:          row.Item.EndTime,
			ModuleType:       row.Item.ModuleType,
			Attended:         row.Attended,
			AttendanceStatus: row.Status,
			CheckInTime:      row.CheckInTime,
		})
	}
	return result, nil
}

// DayTracking summarizes the learner's progress through the current day.
type DayTracking struct {
	HasActiveClass   bool   `json:"hasActiveClass"`
	ClassName        string `json:"className,omitempty"`
	DayNumber        int    `json:"dayNumber,omitempty"`
	TotalDays        int    `json:"totalDays,omitempty"`
	CompletedModules int    `json:"completedModules"`
	TotalModules     int    `json:"totalModules"`
	TimeSpentMinutes int    `json:"timeSpentMinutes"`
}

func (e *Engine) DayTracking(ctx context.Context, userID string) (DayTracking, error) {
	class, err := e.store.ActiveClassForUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return DayTracking{HasActiveClass: false}, nil
	}
	if err != nil {
		return DayTracking{}, err
	}

	dayNumber := DayNumber(class.StartDate, e.now())
	result := DayTracking{
		HasActiveClass: true,
		ClassName:      class.Name,
		DayNumber:      dayNumber,
		TotalDays:      TotalDays(class.StartDate, class.EndDate),
	}
	if dayNumber < 1 {
		return result, nil
	}

	completed, total, err := e.store.DayProgress(ctx, userID, class.ID, dayNumber)
	if err != nil {
		return DayTracking{}, err
	}
	minutes, err := e.store.TimeSpentMinutes(ctx, userID, class.ID, dayNumber)
	if err != nil {
		return DayTracking{}, err
	}
	result.CompletedModules = completed
	result.TotalModules = total
	result.TimeSpentMinutes = minutes
	return result, nil
}

// Materials returns the course materials of the learner's active class.
func (e *Engine) Materials(ctx context.Context, userID string) ([]model.CourseMaterial, error) {
	class, err := e.store.ActiveClassForUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActiveClass
	}
	if err != nil {
		return nil, err
	}
	return e.store.ListCourseMaterials(ctx, class.ID)
}
