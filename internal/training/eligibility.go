package training

import (
	"math"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

// RequirementThreshold is the minimum percentage, for both attendance and
// assignment submission, at which a requirement counts as met.
const RequirementThreshold = 80.0

// Evaluation is the outcome of one eligibility computation.
type Evaluation struct {
	AttendancePct  float64
	SubmissionPct  float64
	AttendanceMet  bool
	AssignmentsMet bool
	AllMet         bool
	Overall        int
	Status         model.CertificateState
}

// Evaluate combines the attendance and submission aggregates into an
// eligibility decision. Deterministic, no I/O.
//
// A class with no scheduled sessions yields 0% attendance, while a class
// with no linked assignments yields 100% submission. The asymmetry is
// intentional: attendance can only be earned, assignments are vacuously
// satisfied when none exist.
func Evaluate(attended, totalSessions, submitted, totalAssignments int) Evaluation {
	var eval Evaluation
	if totalSessions > 0 {
		eval.AttendancePct = float64(attended) / float64(totalSessions) * 100
	}
	if totalAssignments > 0 {
		eval.SubmissionPct = float64(submitted) / float64(totalAssignments) * 100
	} else {
		eval.SubmissionPct = 100
	}
	eval.AttendanceMet = eval.AttendancePct >= RequirementThreshold
	eval.AssignmentsMet = eval.SubmissionPct >= RequirementThreshold
	eval.AllMet = eval.AttendanceMet && eval.AssignmentsMet
	eval.Overall = int(math.Round((eval.AttendancePct + eval.SubmissionPct) / 2))
	eval.Status = model.CertificatePending
	if eval.AllMet {
		eval.Status = model.CertificateRequirementsMet
	}
	return eval
}
