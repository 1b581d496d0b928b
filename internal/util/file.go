package util

import "strings"

// SanitizeSlug reduces a series slug to characters that are safe in a
// folder name: letters, digits, underscore and hyphen. Everything else
// is dropped.
func SanitizeSlug(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteRune(r)
		}
	}

	return b.String()
}

// ExtensionFromContentType maps an image Content-Type header to a file
// extension. Unknown or missing types fall back to png.
func ExtensionFromContentType(ct string) string {
	ct = strings.ToLower(ct)

	switch {
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return "jpg"
	case strings.Contains(ct, "png"):
		return "png"
	case strings.Contains(ct, "webp"):
		return "webp"
	case strings.Contains(ct, "gif"):
		return "gif"
	}

	return "png"
}
