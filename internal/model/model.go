package model

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

func ValidRole(r string) bool {
	switch Role(r) {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceLate    AttendanceStatus = "late"
)

type CertificateState string

const (
	CertificatePending         CertificateState = "pending"
	CertificateRequirementsMet CertificateState = "requirements_met"
)

type SubmissionState string

const (
	SubmissionSubmitted SubmissionState = "submitted"
	SubmissionGraded    SubmissionState = "graded"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	AvatarURL    *string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
}

type RefreshSession struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
	UserAgent *string
	IPAddress *string
}

type Class struct {
	ID           string
	Name         string
	Description  *string
	InstructorID *string
	StartDate    time.Time
	EndDate      time.Time
	IsActive     bool
	CreatedAt    time.Time
}

type ClassMember struct {
	ID         string
	ClassID    string
	UserID     string
	EnrolledAt time.Time
}

type Course struct {
	ID           string
	Title        string
	Description  *string
	Content      *string
	ThumbnailURL *string
	Attachments  []byte
	InstructorID *string
	IsPublished  bool
	OrderIndex   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CourseModule struct {
	ID         string
	CourseID   string
	Title      string
	OrderIndex int
}

type Lesson struct {
	ID          string
	ModuleID    string
	Title       string
	Content     *string
	OrderIndex  int
	IsPublished bool
}

type Enrollment struct {
	ID                 string
	UserID             string
	CourseID           string
	ProgressPercentage int
	EnrolledAt         time.Time
	CompletedAt        *time.Time
}

type Assignment struct {
	ID           string
	CourseID     *string
	Title        string
	Description  *string
	Instructions *string
	Deadline     *time.Time
	MaxPoints    int
	Attachments  []byte
	IsPublished  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Submission struct {
	ID           string
	AssignmentID string
	UserID       string
	Content      *string
	FileURLs     []string
	Status       SubmissionState
	Score        *int
	Feedback     *string
	SubmittedAt  time.Time
	GradedAt     *time.Time
	GradedBy     *string
}

// ScheduleItem is one attendance-checkable block within a training day.
type ScheduleItem struct {
	ID          string
	ClassID     string
	Title       string
	Description *string
	DayNumber   int
	StartTime   string
	EndTime     string
	ModuleType  *string
	OrderIndex  int
	IsActive    bool
}

type AttendanceLog struct {
	ID          string
	UserID      string
	ClassID     string
	ScheduleID  string
	Status      AttendanceStatus
	CheckInTime time.Time
}

type Certificate struct {
	ID                   string
	UserID               string
	ClassID              string
	Code                 string
	Status               CertificateState
	CompletionPercentage int
	RequirementsMet      []byte
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Note struct {
	ID          string
	UserID      string
	LessonID    *string
	LessonTitle *string
	Title       string
	Content     string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type QuickNote struct {
	ID         string
	UserID     string
	ClassID    *string
	ScheduleID *string
	Content    string
	Color      string
	CreatedAt  time.Time
}

type LibraryItem struct {
	ID          string
	Title       string
	Description *string
	Type        string
	URL         *string
	FileURL     *string
	Content     *string
	Tags        []string
	Category    *string
	IsPublic    bool
	Downloads   int
	CreatedBy   string
	CreatorName *string
	CreatedAt   time.Time
}

type CourseMaterial struct {
	ID             string
	ClassID        string
	Title          string
	Description    *string
	FileURL        string
	FileType       *string
	FileSize       *int64
	QRCodeURL      *string
	UploadedBy     *string
	UploadedByName *string
	OrderIndex     int
	CreatedAt      time.Time
}

type UploadedFile struct {
	ID           string
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	Path         string
	UploadedBy   string
	CreatedAt    time.Time
}

type ActivityLog struct {
	ID        string
	UserID    string
	Action    string
	Detail    *string
	CreatedAt time.Time
}
