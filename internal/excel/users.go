// Package excel reads and writes the user bulk-import workbook.
package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

// UserRow is one parsed row of the import workbook. Row is the 1-indexed
// workbook row it came from.
type UserRow struct {
	Row      int
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// RowError describes why one workbook row was rejected.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

var headers = []string{"Name", "Email", "Password", "Role"}

// ParseUsers reads the first sheet of an import workbook. Invalid rows are
// collected, not fatal: a workbook with some bad rows still imports the
// good ones.
func ParseUsers(r io.Reader) ([]UserRow, []RowError, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("excel: workbook has no data rows")
	}

	var (
		users  []UserRow
		failed []RowError
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		user := UserRow{Row: rowNum, Role: model.RoleStudent}
		if len(row) > 0 {
			user.Name = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			user.Email = strings.ToLower(strings.TrimSpace(row[1]))
		}
		if len(row) > 2 {
			user.Password = strings.TrimSpace(row[2])
		}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			user.Role = model.Role(strings.ToLower(strings.TrimSpace(row[3])))
		}

		switch {
		case user.Name == "":
			failed = append(failed, RowError{Row: rowNum, Reason: "missing name"})
		case user.Email == "" || !strings.Contains(user.Email, "@"):
			failed = append(failed, RowError{Row: rowNum, Reason: "invalid email"})
		case len(user.Password) < 6:
			failed = append(failed, RowError{Row: rowNum, Reason: "password shorter than 6 characters"})
		case !model.ValidRole(string(user.Role)):
			failed = append(failed, RowError{Row: rowNum, Reason: "unknown role"})
		default:
			users = append(users, user)
		}
	}
	return users, failed, nil
}

// Template builds an empty import workbook with the expected header row and
// one example row.
func Template() (*excelize.File, error) {
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}
	example := []string{"Jane Doe", "jane@example.com", "changeme1", "student"}
	for i, value := range example {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, value); err != nil {
			return nil, err
		}
	}
	return file, nil
}
