package training

import "testing"

func TestEvaluate(t *testing.T) {
	tests := map[string]struct {
		attended, totalSessions     int
		submitted, totalAssignments int
		wantAttendanceMet           bool
		wantAssignmentsMet          bool
		wantOverall                 int
		wantAllMet                  bool
	}{
		"no sessions scheduled fails attendance": {
			attended: 0, totalSessions: 0, submitted: 1, totalAssignments: 1,
			wantAttendanceMet: false, wantAssignmentsMet: true, wantOverall: 50,
		},
		"no assignments linked passes vacuously": {
			attended: 10, totalSessions: 10, submitted: 0, totalAssignments: 0,
			wantAttendanceMet: true, wantAssignmentsMet: true, wantOverall: 100, wantAllMet: true,
		},
		"eight of ten sessions meets the threshold": {
			attended: 8, totalSessions: 10, submitted: 5, totalAssignments: 5,
			wantAttendanceMet: true, wantAssignmentsMet: true, wantOverall: 90, wantAllMet: true,
		},
		"three of five assignments misses the threshold": {
			attended: 10, totalSessions: 10, submitted: 3, totalAssignments: 5,
			wantAttendanceMet: true, wantAssignmentsMet: false, wantOverall: 80,
		},
		"exactly eighty percent is met": {
			attended: 4, totalSessions: 5, submitted: 4, totalAssignments: 5,
			wantAttendanceMet: true, wantAssignmentsMet: true, wantOverall: 80, wantAllMet: true,
		},
		"just under eighty percent is not met": {
			attended: 79999, totalSessions: 100000, submitted: 5, totalAssignments: 5,
			wantAttendanceMet: false, wantAssignmentsMet: true, wantOverall: 90,
		},
		"nothing done": {
			attended: 0, totalSessions: 10, submitted: 0, totalAssignments: 5,
			wantAttendanceMet: false, wantAssignmentsMet: false, wantOverall: 0,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			eval := Evaluate(tc.attended, tc.totalSessions, tc.submitted, tc.totalAssignments)
			if eval.AttendanceMet != tc.wantAttendanceMet {
				t.Fatalf("AttendanceMet = %v, want %v", eval.AttendanceMet, tc.wantAttendanceMet)
			}
			if eval.AssignmentsMet != tc.wantAssignmentsMet {
				t.Fatalf("AssignmentsMet = %v, want %v", eval.AssignmentsMet, tc.wantAssignmentsMet)
			}
			if eval.Overall != tc.wantOverall {
				t.Fatalf("Overall = %d, want %d", eval.Overall, tc.wantOverall)
			}
			if eval.AllMet != tc.wantAllMet {
				t.Fatalf("AllMet = %v, want %v", eval.AllMet, tc.wantAllMet)
			}
			if eval.Overall < 0 || eval.Overall > 100 {
				t.Fatalf("Overall = %d, out of [0,100]", eval.Overall)
			}
			wantStatus := "pending"
			if tc.wantAllMet {
				wantStatus = "requirements_met"
			}
			if string(eval.Status) != wantStatus {
				t.Fatalf("Status = %q, want %q", eval.Status, wantStatus)
			}
		})
	}
}

func TestEvaluateAsymmetricEdgeCases(t *testing.T) {
	// Zero sessions and zero assignments resolve in opposite directions.
	eval := Evaluate(0, 0, 0, 0)
	if eval.AttendancePct != 0 {
		t.Fatalf("AttendancePct = %v, want 0", eval.AttendancePct)
	}
	if eval.SubmissionPct != 100 {
		t.Fatalf("SubmissionPct = %v, want 100", eval.SubmissionPct)
	}
	if eval.AllMet {
		t.Fatal("AllMet = true, want false")
	}
	if eval.Overall != 50 {
		t.Fatalf("Overall = %d, want 50", eval.Overall)
	}
}
