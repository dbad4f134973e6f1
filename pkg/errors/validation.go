package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// toolNameRegex matches bare executable names for external layout tools.
var toolNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateToolName validates an external layout tool name.
// Only bare command names are accepted here; absolute path overrides
// go through ValidateToolPath instead.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No path separators (prevents invoking arbitrary files)
//   - No control characters
//   - Maximum length of 64 characters
func ValidateToolName(name string) error {
	if name == "" {
		return New(ErrCodeToolNotFound, "layout tool name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "layout tool name too long (max 64 characters)")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "layout tool name cannot contain path separators: %q", name)
	}

	if !toolNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid layout tool name: %q", name)
	}

	return nil
}

// ValidateToolPath validates an absolute path override for a layout tool.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must be absolute (relative overrides are ambiguous across working dirs)
//   - No path traversal sequences (..)
func ValidateToolPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidConfig, "tool path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidConfig, "tool path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "tool path contains invalid characters")
		}
	}

	if !strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidConfig, "tool path must be absolute: %q", path)
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidConfig, "tool path cannot contain path traversal sequences (..)")
	}

	return nil
}

// strategyNameRegex matches registered layout strategy names.
var strategyNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidateStrategyName validates a layout strategy name.
// Membership in the strategy registry is checked by the engine; this
// only rejects names that could never be valid.
func ValidateStrategyName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidStrategy, "strategy name cannot be empty")
	}

	if !strategyNameRegex.MatchString(name) {
		return New(ErrCodeInvalidStrategy, "invalid strategy name: %q", name)
	}

	return nil
}

// ValidateFormat validates an export format name against the allowed set.
func ValidateFormat(format string, allowed []string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}

	for _, a := range allowed {
		if format == a {
			return nil
		}
	}

	return New(ErrCodeInvalidFormat, "unknown format %q (allowed: %s)", format, strings.Join(allowed, ", "))
}

// ValidateWorkers validates a worker pool size. Zero means "use the default".
func ValidateWorkers(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidConfig, "worker count cannot be negative: %d", n)
	}

	const maxWorkers = 1024
	if n > maxWorkers {
		return New(ErrCodeInvalidConfig, "worker count too large (max %d): %d", maxWorkers, n)
	}

	return nil
}

// ValidateDepth validates a recursion depth bound. Zero means "unbounded".
func ValidateDepth(d int) error {
	if d < 0 {
		return New(ErrCodeInvalidConfig, "depth bound cannot be negative: %d", d)
	}

	return nil
}
