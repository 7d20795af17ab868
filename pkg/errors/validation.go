package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateName validates a tree or run name for safety and correctness.
// Names end up in cache keys and archive file names, so it rejects anything
// that could escape a directory.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// algorithmNameRegex matches registered algorithm identifiers.
var algorithmNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidateAlgorithmName checks the lexical shape of an algorithm identifier.
// Whether the algorithm actually exists is decided by the partition registry.
func ValidateAlgorithmName(name string) error {
	if !algorithmNameRegex.MatchString(name) {
		return New(ErrCodeUnknownAlgorithm, "invalid algorithm name: %q", name)
	}
	return nil
}

// ValidateMongoURI validates a MongoDB connection string.
func ValidateMongoURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidInput, "mongo URI cannot be empty")
	}
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return New(ErrCodeInvalidInput, "mongo URI must use mongodb or mongodb+srv scheme")
	}
	return nil
}

// ValidateRedisAddr validates a host:port Redis address.
func ValidateRedisAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidInput, "redis address cannot be empty")
	}
	host, port, ok := strings.Cut(addr, ":")
	if !ok || port == "" {
		return New(ErrCodeInvalidInput, "redis address must be host:port: %q", addr)
	}
	if strings.ContainsAny(host, "/ ") {
		return New(ErrCodeInvalidInput, "redis host contains invalid characters: %q", host)
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return New(ErrCodeInvalidInput, "redis port must be numeric: %q", port)
		}
	}
	return nil
}
