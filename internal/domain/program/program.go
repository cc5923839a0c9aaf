// Package program defines training programs: courses employees can be
// enrolled in.
package program

import (
	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/record"
	"github.com/ERPlora/module-training/internal/domain/tenant"
)

// Program is a training course offered within a tenant.
type Program struct {
	record.Base
	Name          string `json:"name"`
	Description   string `json:"description"`
	DurationHours int    `json:"duration_hours"`
	IsMandatory   bool   `json:"is_mandatory"`
	IsActive      bool   `json:"is_active"`
}

// Input holds the editable fields of a Program as submitted by a form.
type Input struct {
	Name          string `form:"name" json:"name" validate:"required,max=255"`
	Description   string `form:"description" json:"description"`
	DurationHours int    `form:"duration_hours" json:"duration_hours" validate:"gte=0"`
	IsMandatory   bool   `form:"is_mandatory" json:"is_mandatory"`
	IsActive      bool   `form:"is_active" json:"is_active"`
}

// Blank returns the values an empty add form starts from.
func Blank() Input {
	return Input{IsActive: true}
}

// ParseForm coerces submitted form values into an Input.
func ParseForm(f record.Form) Input {
	return Input{
		Name:          record.Text(f, "name"),
		Description:   record.Text(f, "description"),
		DurationHours: record.NonNegativeInt(f, "duration_hours"),
		IsMandatory:   record.Flag(f, "is_mandatory"),
		IsActive:      record.Flag(f, "is_active"),
	}
}

// Validate reports the first invalid field.
func (in Input) Validate() error {
	return record.Validate(in)
}

// New builds an unsaved Program owned by tid.
func New(tid tenant.ID, in Input) *Program {
	p := &Program{Base: record.Owned(tid)}
	p.Apply(in)
	return p
}

// Apply overwrites every editable field.
func (p *Program) Apply(in Input) {
	p.Name = in.Name
	p.Description = in.Description
	p.DurationHours = in.DurationHours
	p.IsMandatory = in.IsMandatory
	p.IsActive = in.IsActive
}

// Input returns the current editable fields, used to pre-fill edit forms.
func (p *Program) Input() Input {
	return Input{
		Name:          p.Name,
		Description:   p.Description,
		DurationHours: p.DurationHours,
		IsMandatory:   p.IsMandatory,
		IsActive:      p.IsActive,
	}
}

// Listing describes how programs are searched, sorted, exported and
// bulk-mutated.
var Listing = listing.Descriptor[Program]{
	Kind:   "training_programs",
	Search: []string{"name", "description"},
	Sort: map[string]string{
		"name":           "name",
		"is_mandatory":   "is_mandatory",
		"is_active":      "is_active",
		"duration_hours": "duration_hours",
		"description":    "description",
		"created_at":     "created_at",
	},
	DefaultSort: "name",
	Columns: []listing.Column[Program]{
		{Field: "name", Header: "Name", Value: func(p *Program) any { return p.Name }},
		{Field: "is_mandatory", Header: "Is Mandatory", Value: func(p *Program) any { return p.IsMandatory }},
		{Field: "is_active", Header: "Is Active", Value: func(p *Program) any { return p.IsActive }},
		{Field: "duration_hours", Header: "Duration Hours", Value: func(p *Program) any { return p.DurationHours }},
		{Field: "description", Header: "Description", Value: func(p *Program) any { return p.Description }},
	},
	Actions: []listing.Action{listing.Activate, listing.Deactivate, listing.Delete},
	Toggle:  true,
}
