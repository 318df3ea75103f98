package feedback

import (
	"strings"
	"unicode/utf8"
)

const (
	maxNormalizedText = 120
	maxDedupeKey      = 255
	widgetAlias       = "+widget"
)

// NormalizeText lowercases, trims and collapses whitespace, capped at 120 characters.
func NormalizeText(value string) string {
	return truncateRunes(strings.Join(strings.Fields(strings.ToLower(value)), " "), maxNormalizedText)
}

// BuildIntakeDedupeKey identifies repeated reports of the same thing from the same person.
func BuildIntakeDedupeKey(source, reporterEmail, title string) string {
	if strings.TrimSpace(source) == "" {
		source = DefaultSource
	}
	key := NormalizeText(source) + "|" + NormalizeText(reporterEmail) + "|" + NormalizeText(title)
	return truncateRunes(key, maxDedupeKey)
}

// NormalizeProfileEmail lowercases an address and strips the widget alias.
func NormalizeProfileEmail(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return ""
	}
	local, domain, ok := strings.Cut(value, "@")
	if !ok {
		return value
	}
	return strings.TrimSuffix(local, widgetAlias) + "@" + domain
}

// WidgetEmail is the profile alias used for people who submit without signing in.
func WidgetEmail(email string) string {
	return strings.Replace(email, "@", widgetAlias+"@", 1)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
