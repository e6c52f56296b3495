package training

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
)

// AttendanceRequirement is the attendance half of a status response.
type AttendanceRequirement struct {
	Met        bool `json:"met"`
	Percentage int  `json:"percentage"`
	Attended   int  `json:"attended"`
	Total      int  `json:"total"`
}

// AssignmentRequirement is the submission half of a status response.
type AssignmentRequirement struct {
	Met        bool `json:"met"`
	Percentage int  `json:"percentage"`
	Submitted  int  `json:"submitted"`
	Total      int  `json:"total"`
}

type Requirements struct {
	Attendance  AttendanceRequirement `json:"attendance"`
	Assignments AssignmentRequirement `json:"assignments"`
}

// CertificateInfo is the persisted certificate record shaped for responses.
type CertificateInfo struct {
	ID                   string                 `json:"id"`
	Code                 string                 `json:"code"`
	Status               model.CertificateState `json:"status"`
	CompletionPercentage int                    `json:"completionPercentage"`
	CreatedAt            string                 `json:"createdAt"`
	UpdatedAt            string                 `json:"updatedAt"`
}

// CertificateStatus is the full result of an eligibility check.
type CertificateStatus struct {
	HasActiveClass    bool             `json:"hasActiveClass"`
	ClassName         string           `json:"className,omitempty"`
	DayNumber         int              `json:"dayNumber,omitempty"`
	TotalDays         int              `json:"totalDays,omitempty"`
	Certificate       *CertificateInfo `json:"certificate,omitempty"`
	Requirements      *Requirements    `json:"requirements,omitempty"`
	OverallCompletion int              `json:"overallCompletion"`
	CanDownload       bool             `json:"canDownload"`
}

type requirementsMet struct {
	Attendance  bool `json:"attendance"`
	Assignments bool `json:"assignments"`
}

// CertificateStatus recomputes and persists the learner's eligibility for
// their active class. Every call overwrites the stored evaluation, so the
// status can move in either direction when the underlying attendance or
// submission data changes.
func (e *Engine) CertificateStatus(ctx context.Context, userID string) (CertificateStatus, error) {
	class, err := e.store.ActiveClassForUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return CertificateStatus{HasActiveClass: false}, nil
	}
	if err != nil {
		return CertificateStatus{}, err
	}

	attended, totalSessions, err := e.store.AttendanceCounts(ctx, userID, class.ID)
	if err != nil {
		return CertificateStatus{}, err
	}
	submitted, totalAssignments, err := e.store.SubmissionCounts(ctx, userID, class.ID)
	if err != nil {
		return CertificateStatus{}, err
	}

	eval := Evaluate(attended, totalSessions, submitted, totalAssignments)

	cert, err := e.ensureCertificate(ctx, userID, class.ID)
	if err != nil {
		return CertificateStatus{}, err
	}

	breakdown, err := json.Marshal(requirementsMet{
		Attendance:  eval.AttendanceMet,
		Assignments: eval.AssignmentsMet,
	})
	if err != nil {
		return CertificateStatus{}, err
	}
	cert, err = e.store.UpdateCertificateEvaluation(ctx, cert.ID, eval.Status, eval.Overall, breakdown)
	if err != nil {
		return CertificateStatus{}, err
	}

	now := e.now()
	return CertificateStatus{
		HasActiveClass: true,
		ClassName:      class.Name,
		DayNumber:      DayNumber(class.StartDate, now),
		TotalDays:      TotalDays(class.StartDate, class.EndDate),
		Certificate: &CertificateInfo{
			ID:                   cert.ID,
			Code:                 cert.Code,
			Status:               cert.Status,
			CompletionPercentage: cert.CompletionPercentage,
			CreatedAt:            cert.CreatedAt.Format("2006-01-02"),
			UpdatedAt:            cert.UpdatedAt.Format("2006-01-02"),
		},
		Requirements: &Requirements{
			Attendance: AttendanceRequirement{
				Met:        eval.AttendanceMet,
				Percentage: roundPct(eval.AttendancePct),
				Attended:   attended,
				Total:      totalSessions,
			},
			Assignments: AssignmentRequirement{
				Met:        eval.AssignmentsMet,
				Percentage: roundPct(eval.SubmissionPct),
				Submitted:  submitted,
				Total:      totalAssignments,
			},
		},
		OverallCompletion: eval.Overall,
		CanDownload:       eval.AllMet,
	}, nil
}

// ensureCertificate returns the learner's certificate record for the class,
// creating it on first sight. A concurrent first check can race on creation;
// the (user, class) unique key decides the winner and the loser re-reads.
func (e *Engine) ensureCertificate(ctx context.Context, userID, classID string) (model.Certificate, error) {
	cert, err := e.store.GetCertificate(ctx, userID, classID)
	if err == nil {
		return cert, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Certificate{}, err
	}

	cert, err = e.store.CreateCertificate(ctx, userID, classID, e.newCertificateCode(userID))
	if repository.IsUniqueViolation(err) {
		return e.store.GetCertificate(ctx, userID, classID)
	}
	return cert, err
}

func (e *Engine) newCertificateCode(userID string) string {
	prefix := userID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("CERT-%d-%s", e.now().UnixMilli(), prefix)
}

func roundPct(pct float64) int {
	return int(pct + 0.5)
}
