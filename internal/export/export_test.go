package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ERPlora/module-training/internal/domain"
	"github.com/ERPlora/module-training/internal/domain/enrollment"
	"github.com/ERPlora/module-training/internal/domain/program"
	"github.com/ERPlora/module-training/internal/domain/skill"
)

func TestCell(t *testing.T) {
	day := time.Date(2026, 2, 9, 15, 4, 5, 0, time.UTC)
	score := enrollment.ScoreFromCents(8550)
	var nilTime *time.Time
	var nilScore *enrollment.Score

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "Welding", "Welding"},
		{"true", true, "Yes"},
		{"false", false, "No"},
		{"int", 40, "40"},
		{"date", day, "2026-02-09"},
		{"date pointer", &day, "2026-02-09"},
		{"nil date", nilTime, ""},
		{"score", score, "85.50"},
		{"score pointer", &score, "85.50"},
		{"nil score", nilScore, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cell(tt.in); got != tt.want {
				t.Errorf("Cell(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"csv", "excel"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for pdf, got %v", err)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(skill.Listing.Kind, CSV); got != "skills.csv" {
		t.Errorf("got %q", got)
	}
	if got := Filename(enrollment.Listing.Kind, Excel); got != "employee_trainings.xlsx" {
		t.Errorf("got %q", got)
	}
}

func TestCSVHeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, CSV, Build(&program.Listing, nil)); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "Name,Is Mandatory,Is Active,Duration Hours,Description\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCSVRowsInOrder(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	score := enrollment.ScoreFromCents(9000)
	items := []enrollment.Enrollment{
		{ProgramName: "First Aid", Status: "completed", Score: &score, EmployeeID: "e1", EmployeeName: "Ana, B.", StartDate: &start},
		{ProgramName: "Welding", Status: "enrolled", EmployeeID: "e2", EmployeeName: "Bo"},
	}

	var buf bytes.Buffer
	if err := Write(&buf, CSV, Build(&enrollment.Listing, items)); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "TrainingProgram" {
		t.Errorf("header = %v", records[0])
	}
	want := []string{"First Aid", "completed", "90.00", "e1", "Ana, B.", "2026-01-05"}
	for i, v := range want {
		if records[1][i] != v {
			t.Errorf("row 1 col %d = %q, want %q", i, records[1][i], v)
		}
	}
	if records[2][2] != "" || records[2][5] != "" {
		t.Errorf("nil score and date should be empty, got %v", records[2])
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	items := []skill.Skill{
		{Name: "Welding", Category: "Trades", IsActive: true},
		{Name: "Excel", Category: "Office"},
	}

	var buf bytes.Buffer
	if err := Write(&buf, Excel, Build(&skill.Listing, items)); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("skills")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Name" || rows[0][1] != "Is Active" || rows[0][2] != "Category" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "Yes" || rows[2][1] != "No" {
		t.Errorf("flags = %q, %q", rows[1][1], rows[2][1])
	}
}

func TestXLSXHeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Excel, Build(&skill.Listing, []skill.Skill{})); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("skills")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("expected header row only, got %d rows", len(rows))
	}
}
