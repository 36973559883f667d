package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when generation is requested without a
// configured oracle.
var ErrNotConfigured = errors.New("generation oracle not configured")

// Disabled is the GenerationService variant selected at startup when no
// oracle is configured. The composer sees a regular port and falls back to
// deterministic composition; no nil checks anywhere.
type Disabled struct{}

// Generate always fails with ErrNotConfigured.
func (Disabled) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

// Available reports that no oracle is configured.
func (Disabled) Available() bool { return false }
