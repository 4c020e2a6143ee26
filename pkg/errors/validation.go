package errors

import (
	"strings"
	"unicode"
)

const maxActorNameLength = 256

// ValidateActorName validates an actor name read from a graph file.
//
// The rules are conservative because names end up as Graphviz node labels
// and in generated file contents:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateActorName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "actor name cannot be empty")
	}

	if len(name) > maxActorNameLength {
		return New(ErrCodeInvalidInput, "actor name too long (max %d characters)", maxActorNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "actor name %q contains invalid control characters", name)
		}
	}

	return nil
}

// ValidateRate validates a per-firing production or consumption rate.
// Rates must be strictly positive.
func ValidateRate(rate int64) error {
	if rate <= 0 {
		return New(ErrCodeInvalidRate, "rate must be positive, got %d", rate)
	}
	return nil
}

// ValidateInitialTokens validates the initial token count of a channel.
func ValidateInitialTokens(tokens int64) error {
	if tokens < 0 {
		return New(ErrCodeInvalidRate, "initial tokens must be non-negative, got %d", tokens)
	}
	return nil
}

// ValidatePath validates an input or output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
