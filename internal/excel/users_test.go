package excel

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func TestParseUsers(t *testing.T) {
	buf := buildWorkbook(t, [][]string{
		{"Name", "Email", "Password", "Role"},
		{"Jane Doe", "JANE@Example.com", "secret1", "student"},
		{"John Smith", "john@example.com", "secret2", ""},
		{"", "missing@example.com", "secret3", "student"},
		{"Bad Email", "not-an-email", "secret4", "student"},
		{"Short Pass", "short@example.com", "abc", "student"},
		{"Bad Role", "role@example.com", "secret5", "wizard"},
	})

	users, failed, err := ParseUsers(buf)
	if err != nil {
		t.Fatalf("ParseUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("parsed %d users, want 2", len(users))
	}
	if users[0].Email != "jane@example.com" {
		t.Fatalf("email not lowercased: %q", users[0].Email)
	}
	if string(users[1].Role) != "student" {
		t.Fatalf("empty role should default to student, got %q", users[1].Role)
	}
	if len(failed) != 4 {
		t.Fatalf("%d failed rows, want 4: %+v", len(failed), failed)
	}
	if failed[0].Row != 4 {
		t.Fatalf("first failure at row %d, want 4", failed[0].Row)
	}
}

func TestParseUsersEmptyWorkbook(t *testing.T) {
	buf := buildWorkbook(t, [][]string{{"Name", "Email", "Password", "Role"}})
	if _, _, err := ParseUsers(buf); err == nil {
		t.Fatal("expected error for workbook without data rows")
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	file, err := Template()
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	users, failed, err := ParseUsers(&buf)
	if err != nil {
		t.Fatalf("ParseUsers on template: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("template example row rejected: %+v", failed)
	}
	if len(users) != 1 || users[0].Email != "jane@example.com" {
		t.Fatalf("unexpected template parse: %+v", users)
	}
}
