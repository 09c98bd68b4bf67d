package model

// Package model contains the data handed to view templates.
// There is no business logic here.

// Placeholder is the value bound to the "model" key of the welcome view.
// It is a context map with no entries; templates must not rely on any field.
type Placeholder = map[string]any

// NewPlaceholder returns a fresh, empty placeholder for a single render.
func NewPlaceholder() Placeholder {
	return Placeholder{}
}
