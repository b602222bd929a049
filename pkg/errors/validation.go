package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// capabilityIDRegex matches URL-safe capability slugs ("git-controls", "jobs").
var capabilityIDRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// reservedIDs collide with fixed site routes and cannot be used as capability ids.
var reservedIDs = map[string]bool{
	"llms":     true,
	"llms.txt": true,
	"diagrams": true,
	"theme":    true,
	"healthz":  true,
	"static":   true,
}

// ValidateCapabilityID validates a capability identifier.
// Identifiers become URL path segments and export file names, so the rules
// are conservative:
//   - No empty ids
//   - Lowercase ASCII letters, digits and inner hyphens only
//   - Maximum length of 64 characters
//   - Not one of the reserved route names
func ValidateCapabilityID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCatalog, "capability id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidCatalog, "capability id too long (max 64 characters): %q", id)
	}
	if !capabilityIDRegex.MatchString(id) {
		return New(ErrCodeInvalidCatalog, "invalid capability id: %q", id)
	}
	if reservedIDs[id] {
		return New(ErrCodeInvalidCatalog, "capability id %q is reserved", id)
	}
	return nil
}

// ValidatePath validates a relative output path for safety.
// It prevents path traversal when writing exported files.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
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

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
