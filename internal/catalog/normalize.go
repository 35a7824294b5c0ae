package catalog

import (
	"regexp"
	"slices"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// CleanName trims a display name and collapses internal whitespace.
// Case is preserved: names are shown to users as typed.
func CleanName(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Normalize lowercases a cleaned value. Used for enum-like inputs
// (owner types, media types, statuses) arriving from CLI/MCP/web.
func Normalize(s string) string {
	return strings.ToLower(CleanName(s))
}

// IsMediaType reports whether t is a known media type.
func IsMediaType(t string) bool {
	return slices.Contains(MediaTypes, t)
}

// IsOwnerType reports whether t is a known owner type.
func IsOwnerType(t string) bool {
	return t == OwnerGlobal || t == OwnerActor || t == OwnerScene
}

// IsTakeStatus reports whether s is a status a take may hold.
func IsTakeStatus(s string) bool {
	return slices.Contains(TakeStatuses, s)
}
