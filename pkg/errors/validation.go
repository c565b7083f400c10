package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// graphNameRegex matches names accepted for stored graphs.
var graphNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateGraphName validates the name a graph is stored under.
// Names become file names and document keys, so the rules are conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - No control characters
//   - No path traversal sequences or separators
//   - Letters, digits, '.', '_' and '-' only, not starting with a dot
func ValidateGraphName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "graph name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "graph name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "graph name contains invalid control characters")
		}
	}

	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "graph name cannot contain path components: %q", name)
	}

	if !graphNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid graph name: %q", name)
	}

	return nil
}

// ValidatePoint rejects coordinates that cannot take part in angular ordering.
func ValidatePoint(x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return New(ErrCodeInvalidInput, "position (%v, %v) is not finite", x, y)
	}
	return nil
}

// ValidateGridPoint validates a position that will be stored in the text
// record format, which keeps whole-number coordinates only.
func ValidateGridPoint(x, y float64) error {
	if err := ValidatePoint(x, y); err != nil {
		return err
	}
	if x != math.Trunc(x) || y != math.Trunc(y) {
		return New(ErrCodeInvalidInput, "position (%v, %v) must have integer coordinates", x, y)
	}
	return nil
}

// ValidatePointCount validates the number of points requested from the generator.
func ValidatePointCount(n int) error {
	const maxPoints = 1_000_000
	if n < 0 {
		return New(ErrCodeInvalidInput, "point count cannot be negative: %d", n)
	}
	if n > maxPoints {
		return New(ErrCodeInvalidInput, "point count too large (max %d)", maxPoints)
	}
	return nil
}

// ValidateCanvas validates a square canvas size and its margin.
func ValidateCanvas(size, margin int) error {
	if size <= 0 {
		return New(ErrCodeInvalidInput, "canvas size must be positive: %d", size)
	}
	if margin < 0 || 2*margin >= size {
		return New(ErrCodeInvalidInput, "canvas margin %d does not fit canvas %d", margin, size)
	}
	return nil
}
