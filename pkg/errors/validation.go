package errors

import (
	"strings"
	"unicode"
)

// maxSigilLength bounds witness identifiers; sigils are short labels like "W1".
const maxSigilLength = 64

// ValidateSigil checks that a witness sigil is usable as an identifier.
//
// Sigils appear in edge labels, markup node keys and exported file names,
// so the rules are strict:
//   - No empty sigils
//   - No whitespace or control characters
//   - No path separators
//   - Maximum length of 64 characters
func ValidateSigil(sigil string) error {
	if sigil == "" {
		return New(ErrCodeInvalidWitness, "sigil cannot be empty")
	}
	if len(sigil) > maxSigilLength {
		return New(ErrCodeInvalidWitness, "sigil too long (max %d characters)", maxSigilLength)
	}
	for _, r := range sigil {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidWitness, "sigil %q contains whitespace or control characters", sigil)
		}
	}
	if strings.ContainsAny(sigil, "/\\") {
		return New(ErrCodeInvalidWitness, "sigil %q cannot contain path separators", sigil)
	}
	return nil
}

// ValidateSigils validates each sigil and rejects duplicates.
// Every witness in a collation run must be distinguishable.
func ValidateSigils(sigils []string) error {
	seen := make(map[string]bool, len(sigils))
	for _, s := range sigils {
		if err := ValidateSigil(s); err != nil {
			return err
		}
		if seen[s] {
			return New(ErrCodeInvalidWitness, "duplicate sigil %q", s)
		}
		seen[s] = true
	}
	return nil
}

// ValidatePath validates an input or output file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
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
