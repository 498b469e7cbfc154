// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address for storage and lookups.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving its case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role lowercases and trims a role value. Caller is responsible for
// mapping mixed-case role names (e.g. subOrgAdmin) back to canonical form.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a free-text query parameter, preserving its case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Slug derives a URL slug from an organization name: lowercase, internal
// whitespace collapsed to single hyphens, and every character outside
// [a-z0-9-] dropped.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DBName derives a tenant database name from a slug by replacing hyphens
// with underscores.
func DBName(slug string) string {
	return strings.ReplaceAll(slug, "-", "_")
}
