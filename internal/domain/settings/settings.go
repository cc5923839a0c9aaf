// Package settings defines the module identity and its (currently empty)
// settings document.
package settings

// Module identifies this module to the host application.
type Module struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Training is the identity reported by the settings endpoint.
var Training = Module{
	ID:          "training",
	Name:        "Training & Skills",
	Version:     "1.0.0",
	Description: "Employee training programs and skill tracking",
}

// Settings is the settings page payload. The module has no settings of its
// own yet, so Values is always empty.
type Settings struct {
	Module Module            `json:"module"`
	Values map[string]string `json:"settings"`
}

// Placeholder returns the settings document for any tenant.
func Placeholder() Settings {
	return Settings{Module: Training, Values: map[string]string{}}
}
