// Package skill defines the skills catalog of a tenant.
package skill

import (
	"github.com/ERPlora/module-training/internal/domain/listing"
	"github.com/ERPlora/module-training/internal/domain/record"
	"github.com/ERPlora/module-training/internal/domain/tenant"
)

// Skill is a named competency, optionally grouped by category.
type Skill struct {
	record.Base
	Name     string `json:"name"`
	Category string `json:"category"`
	IsActive bool   `json:"is_active"`
}

// Input holds the editable fields of a Skill.
type Input struct {
	Name     string `form:"name" json:"name" validate:"required,max=100"`
	Category string `form:"category" json:"category" validate:"max=100"`
	IsActive bool   `form:"is_active" json:"is_active"`
}

// Blank returns the values an empty add form starts from.
func Blank() Input {
	return Input{IsActive: true}
}

// ParseForm coerces submitted form values into an Input.
func ParseForm(f record.Form) Input {
	return Input{
		Name:     record.Text(f, "name"),
		Category: record.Text(f, "category"),
		IsActive: record.Flag(f, "is_active"),
	}
}

// Validate reports the first invalid field.
func (in Input) Validate() error {
	return record.Validate(in)
}

// New builds an unsaved Skill owned by tid.
func New(tid tenant.ID, in Input) *Skill {
	s := &Skill{Base: record.Owned(tid)}
	s.Apply(in)
	return s
}

// Apply overwrites every editable field.
func (s *Skill) Apply(in Input) {
	s.Name = in.Name
	s.Category = in.Category
	s.IsActive = in.IsActive
}

// Input returns the current editable fields, used to pre-fill edit forms.
func (s *Skill) Input() Input {
	return Input{Name: s.Name, Category: s.Category, IsActive: s.IsActive}
}

// Listing describes how skills are searched, sorted, exported and
// bulk-mutated.
var Listing = listing.Descriptor[Skill]{
	Kind:   "skills",
	Search: []string{"name", "category"},
	Sort: map[string]string{
		"name":       "name",
		"is_active":  "is_active",
		"category":   "category",
		"created_at": "created_at",
	},
	DefaultSort: "name",
	Columns: []listing.Column[Skill]{
		{Field: "name", Header: "Name", Value: func(s *Skill) any { return s.Name }},
		{Field: "is_active", Header: "Is Active", Value: func(s *Skill) any { return s.IsActive }},
		{Field: "category", Header: "Category", Value: func(s *Skill) any { return s.Category }},
	},
	Actions: []listing.Action{listing.Activate, listing.Deactivate, listing.Delete},
	Toggle:  true,
}
