package feedback

import (
	"strings"
)

// Envelope types
const (
	TypeFeatureRequest = "FEATURE_REQUEST"
	TypeBugReport      = "BUG_REPORT"
	TypeImprovement    = "IMPROVEMENT"
)

// Envelope priorities
const (
	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)

const (
	DefaultType     = TypeFeatureRequest
	DefaultPriority = PriorityMedium
	DefaultSource   = "web"

	// MaxAttachments is the number of attachment URLs kept per submission.
	MaxAttachments = 4

	attachmentsMarker = "[ATTACHMENTS]"
	emptyPreview      = "No details provided."
)

// Envelope is the structured metadata packed into a feedback description.
type Envelope struct {
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	Source      string   `json:"source"`
	Reference   string   `json:"reference"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments"`
}

// ParsedContent is a decoded envelope plus the one-line preview shown on boards.
type ParsedContent struct {
	Envelope
	Preview string `json:"preview"`
}

// EncodeContent packs an envelope into the line-oriented text stored in feedback.description.
func EncodeContent(env Envelope) string {
	lines := []string{
		"Type: " + env.Type,
		"Priority: " + env.Priority,
		"Source: " + env.Source,
		"Reference: " + env.Reference,
		"",
		strings.TrimSpace(env.Body),
	}

	if len(env.Attachments) > 0 {
		lines = append(lines, "", attachmentsMarker)
		for _, url := range env.Attachments {
			lines = append(lines, strings.TrimSpace(url))
		}
	}

	return strings.Join(lines, "\n")
}

// DecodeContent parses text produced by EncodeContent. It never fails: anything
// missing or unrecognised falls back to the defaults.
func DecodeContent(raw string) ParsedContent {
	lines := strings.Split(raw, "\n")

	env := Envelope{
		Type:     DefaultType,
		Priority: DefaultPriority,
		Source:   DefaultSource,
	}

	i := 0
	for ; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			// the blank separator belongs to neither headers nor body
			i++
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			break
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "type":
			env.Type = NormalizeType(value)
		case "priority":
			env.Priority = NormalizePriority(value)
		case "source":
			if value != "" {
				env.Source = value
			}
		case "reference":
			env.Reference = value
		}
	}

	rest := lines[min(i, len(lines)):]
	marker := -1
	for j, line := range rest {
		if strings.TrimSpace(line) == attachmentsMarker {
			marker = j
			break
		}
	}

	bodyLines := rest
	if marker >= 0 {
		bodyLines = rest[:marker]
		for _, line := range rest[marker+1:] {
			line = strings.TrimSpace(line)
			if isHTTPURL(line) {
				env.Attachments = append(env.Attachments, line)
			}
		}
	}
	env.Body = strings.TrimSpace(strings.Join(bodyLines, "\n"))

	return ParsedContent{Envelope: env, Preview: preview(env.Body)}
}

// SanitizeAttachments trims the submitted URLs, drops anything that is not http(s)
// and keeps at most MaxAttachments.
func SanitizeAttachments(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if !isHTTPURL(url) {
			continue
		}
		out = append(out, url)
		if len(out) == MaxAttachments {
			break
		}
	}
	return out
}

// NormalizeType returns the canonical envelope type or DefaultType.
func NormalizeType(value string) string {
	switch v := strings.ToUpper(strings.TrimSpace(value)); v {
	case TypeFeatureRequest, TypeBugReport, TypeImprovement:
		return v
	default:
		return DefaultType
	}
}

// NormalizePriority returns the canonical envelope priority or DefaultPriority.
func NormalizePriority(value string) string {
	switch v := strings.ToUpper(strings.TrimSpace(value)); v {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return v
	default:
		return DefaultPriority
	}
}

func preview(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return emptyPreview
}

func isHTTPURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}
