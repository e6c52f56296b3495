package repository

import (
	"context"
	"time"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

const scheduleColumns = `id, class_id, title, description, day_number, start_time, end_time, module_type, order_index, is_active`

func scanScheduleItem(row interface{ Scan(...any) error }) (model.ScheduleItem, error) {
	var item model.ScheduleItem
	err := row.Scan(
		&item.ID,
		&item.ClassID,
		&item.Title,
		&item.Description,
		&item.DayNumber,
		&item.StartTime,
		&item.EndTime,
		&item.ModuleType,
		&item.OrderIndex,
		&item.IsActive,
	)
	return item, err
}

func (s *Store) GetScheduleItem(ctx context.Context, scheduleID string) (model.ScheduleItem, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM daily_schedules WHERE id = $1`, scheduleID)
	return scanScheduleItem(row)
}

// ScheduleWithAttendance is a schedule block merged with the user's
// attendance log for it, if any.
type ScheduleWithAttendance struct {
	Item        model.ScheduleItem
	Attended    bool
	Status      *model.AttendanceStatus
	CheckInTime *time.Time
}

// DaySchedule returns the active schedule blocks for one day of a class,
// each merged with the user's check-in state.
func (s *Store) DaySchedule(ctx context.Context, classID string, dayNumber int, userID string) ([]ScheduleWithAttendance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ds.id, ds.class_id, ds.title, ds.description, ds.day_number, ds.start_time,
		       ds.end_time, ds.module_type, ds.order_index, ds.is_active,
		       al.status, al.check_in_time
		FROM daily_schedules ds
		LEFT JOIN attendance_logs al ON al.schedule_id = ds.id AND al.user_id = $3
		WHERE ds.class_id = $1 AND ds.day_number = $2 AND ds.is_active = true
		ORDER BY ds.order_index, ds.start_time
	`, classID, dayNumber, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedule []ScheduleWithAttendance
	for rows.Next() {
		var entry ScheduleWithAttendance
		err := rows.Scan(
			&entry.Item.ID,
			&entry.Item.ClassID,
			&entry.Item.Title,
			&entry.Item.Description,
			&entry.Item.DayNumber,
			&entry.Item.StartTime,
			&entry.Item.EndTime,
			&entry.Item.ModuleType,
			&entry.Item.OrderIndex,
			&entry.Item.IsActive,
			&entry.Status,
			&entry.CheckInTime,
		)
		if err != nil {
			return nil, err
		}
		entry.Attended = entry.Status != nil
		schedule = append(schedule, entry)
	}
	return schedule, rows.Err()
}

// AttendanceCounts returns how many distinct blocks the user has checked
// into and how many active blocks the class has scheduled in total.
func (s *Store) AttendanceCounts(ctx context.Context, userID, classID string) (attended, total int, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(DISTINCT al.schedule_id) FROM attendance_logs al
			 JOIN daily_schedules ds ON ds.id = al.schedule_id
			 WHERE al.user_id = $1 AND al.class_id = $2 AND ds.is_active = true),
			(SELECT COUNT(*) FROM daily_schedules
			 WHERE class_id = $2 AND is_active = true)
	`, userID, classID).Scan(&attended, &total)
	return attended, total, err
}

// SubmissionCounts returns how many of the class's linked assignments the
// user has submitted and how many are linked in total. Every linked
// assignment counts, published or not.
func (s *Store) SubmissionCounts(ctx context.Context, userID, classID string) (submitted, total int, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM assignment_submissions sub
			 JOIN class_assignments ca ON ca.assignment_id = sub.assignment_id
			 WHERE sub.user_id = $1 AND ca.class_id = $2),
			(SELECT COUNT(*) FROM class_assignments
			 WHERE class_id = $2)
	`, userID, classID).Scan(&submitted, &total)
	return submitted, total, err
}

func (s *Store) HasAttendanceLog(ctx context.Context, userID, scheduleID string) (bool, error) {
	var found bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM attendance_logs WHERE user_id = $1 AND schedule_id = $2)
	`, userID, scheduleID).Scan(&found)
	return found, err
}

func (s *Store) InsertAttendanceLog(ctx context.Context, userID, classID, scheduleID string, status model.AttendanceStatus, checkInTime time.Time) (model.AttendanceLog, error) {
	var log model.AttendanceLog
	row := s.pool.QueryRow(ctx, `
		INSERT INTO attendance_logs (user_id, class_id, schedule_id, status, check_in_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, class_id, schedule_id, status, check_in_time
	`, userID, classID, scheduleID, status, checkInTime)
	err := row.Scan(&log.ID, &log.UserID, &log.ClassID, &log.ScheduleID, &log.Status, &log.CheckInTime)
	return log, err
}

// DayProgress returns how many of the day's active blocks the user attended
// on time and how many active blocks the day has in total. Only 'present'
// check-ins count as completed.
func (s *Store) DayProgress(ctx context.Context, userID, classID string, dayNumber int) (completed, total int, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM attendance_logs al
			 JOIN daily_schedules ds ON ds.id = al.schedule_id
			 WHERE al.user_id = $1 AND al.class_id = $2 AND ds.day_number = $3
			   AND ds.is_active = true AND al.status = 'present'),
			(SELECT COUNT(*) FROM daily_schedules
			 WHERE class_id = $2 AND day_number = $3 AND is_active = true)
	`, userID, classID, dayNumber).Scan(&completed, &total)
	return completed, total, err
}

// TimeSpentMinutes sums the scheduled length of the blocks the user has
// checked into on one day. Block times are "HH:MM:SS" strings.
func (s *Store) TimeSpentMinutes(ctx context.Context, userID, classID string, dayNumber int) (int, error) {
	var minutes int
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(EXTRACT(EPOCH FROM (ds.end_time::time - ds.start_time::time)) / 60), 0)::int
		FROM attendance_logs al
		JOIN daily_schedules ds ON ds.id = al.schedule_id
		WHERE al.user_id = $1 AND al.class_id = $2 AND ds.day_number = $3
	`, userID, classID, dayNumber).Scan(&minutes)
	return minutes, err
}
