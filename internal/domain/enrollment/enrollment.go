// Package enrollment defines employee enrollments in training programs.
package enrollment

import (
	"time"

	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/record"
	"github.com/ERPlora/module-training/internal/domain/tenant"
)

// DefaultStatus is assigned when no status is submitted.
const DefaultStatus = "enrolled"

// Enrollment records one employee's participation in a program.
type Enrollment struct {
	record.Base
	EmployeeID     string     `json:"employee_id"`
	EmployeeName   string     `json:"employee_name"`
	ProgramID      string     `json:"program_id"`
	ProgramName    string     `json:"program_name"`
	Status         string     `json:"status"`
	StartDate      *time.Time `json:"start_date"`
	CompletionDate *time.Time `json:"completion_date"`
	Score          *Score     `json:"score"`
}

// Input holds the editable fields of an Enrollment.
type Input struct {
	EmployeeID     string     `form:"employee_id" json:"employee_id" validate:"required,uuid"`
	EmployeeName   string     `form:"employee_name" json:"employee_name" validate:"required,max=255"`
	ProgramID      string     `form:"program_id" json:"program_id" validate:"required,uuid"`
	Status         string     `form:"status" json:"status" validate:"max=20"`
	StartDate      *time.Time `form:"start_date" json:"start_date"`
	CompletionDate *time.Time `form:"completion_date" json:"completion_date"`
	Score          Score      `form:"score" json:"score"`
}

// Blank returns the values an empty add form starts from.
func Blank() Input {
	return Input{Status: DefaultStatus}
}

// ParseForm coerces submitted values. Unlike the other kinds it can fail:
// dates have no sensible fallback and an out-of-range score cannot be stored.
func ParseForm(f record.Form) (Input, error) {
	in := Input{
		EmployeeID:   record.Text(f, "employee_id"),
		EmployeeName: record.Text(f, "employee_name"),
		ProgramID:    record.Text(f, "program_id"),
		Status:       record.Text(f, "status"),
	}
	if in.Status == "" {
		in.Status = DefaultStatus
	}

	var err error
	if in.StartDate, err = record.Date(f, "start_date"); err != nil {
		return in, err
	}
	if in.CompletionDate, err = record.Date(f, "completion_date"); err != nil {
		return in, err
	}
	if in.Score, err = CoerceScore(f.Get("score")); err != nil {
		return in, err
	}
	return in, nil
}

// Validate reports the first invalid field.
func (in Input) Validate() error {
	return record.Validate(in)
}

// New builds an unsaved Enrollment owned by tid.
func New(tid tenant.ID, in Input) *Enrollment {
	e := &Enrollment{Base: record.Owned(tid)}
	e.Apply(in)
	return e
}

// Apply overwrites every editable field. ProgramName is refreshed by the
// store on the next read.
func (e *Enrollment) Apply(in Input) {
	if e.ProgramID != in.ProgramID {
		e.ProgramName = ""
	}
	e.EmployeeID = in.EmployeeID
	e.EmployeeName = in.EmployeeName
	e.ProgramID = in.ProgramID
	e.Status = in.Status
	e.StartDate = in.StartDate
	e.CompletionDate = in.CompletionDate
	score := in.Score
	e.Score = &score
}

// Input returns the current editable fields, used to pre-fill edit forms.
func (e *Enrollment) Input() Input {
	in := Input{
		EmployeeID:     e.EmployeeID,
		EmployeeName:   e.EmployeeName,
		ProgramID:      e.ProgramID,
		Status:         e.Status,
		StartDate:      e.StartDate,
		CompletionDate: e.CompletionDate,
	}
	if e.Score != nil {
		in.Score = *e.Score
	}
	return in
}

// Listing describes enrollment listings. The "program" sort key orders by
// program name; enrollments have no is_active flag, so only delete applies.
var Listing = listing.Descriptor[Enrollment]{
	Kind:   "employee_trainings",
	Search: []string{"employee_name", "status"},
	Sort: map[string]string{
		"program":       "program_name",
		"status":        "status",
		"score":         "score",
		"employee_id":   "employee_id",
		"employee_name": "employee_name",
		"start_date":    "start_date",
		"created_at":    "created_at",
	},
	DefaultSort: "program",
	Columns: []listing.Column[Enrollment]{
		{Field: "program_name", Header: "TrainingProgram", Value: func(e *Enrollment) any { return e.ProgramName }},
		{Field: "status", Header: "Status", Value: func(e *Enrollment) any { return e.Status }},
		{Field: "score", Header: "Score", Value: func(e *Enrollment) any { return e.Score }},
		{Field: "employee_id", Header: "Employee Id", Value: func(e *Enrollment) any { return e.EmployeeID }},
		{Field: "employee_name", Header: "Employee Name", Value: func(e *Enrollment) any { return e.EmployeeName }},
		{Field: "start_date", Header: "Start Date", Value: func(e *Enrollment) any { return e.StartDate }},
	},
	Actions: []listing.Action{listing.Delete},
}
