package errors

import (
	"strings"
	"unicode"
)

// maxColumnNameLength bounds column names accepted from config files and API
// requests.
const maxColumnNameLength = 256

// ValidateColumnName validates a column name used as a level, metric or color
// column. Empty names, control characters and overly long names are rejected.
func ValidateColumnName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "column name cannot be empty")
	}

	if len(name) > maxColumnNameLength {
		return New(ErrCodeInvalidInput, "column name too long (max %d characters)", maxColumnNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "column name %q contains control characters", name)
		}
	}

	return nil
}

// ValidateColumnNames validates every name and rejects duplicates.
func ValidateColumnNames(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if err := ValidateColumnName(name); err != nil {
			return err
		}
		if seen[name] {
			return New(ErrCodeInvalidInput, "column %q listed more than once", name)
		}
		seen[name] = true
	}
	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
