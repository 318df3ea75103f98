package feedback

import "strings"

// Status is a workflow state of a feedback record.
type Status string

const (
	StatusOpen       Status = "open"
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusShipped    Status = "shipped"
)

// IsValidStatus reports whether s is one of the four workflow states.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusPlanned, StatusInProgress, StatusShipped:
		return true
	}
	return false
}

// parseStatus maps a raw value to a workflow state, treating "new" as an alias of open.
func parseStatus(value string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if s == "new" {
		return StatusOpen, true
	}
	return s, IsValidStatus(s)
}

// NormalizeStatus coerces a stored or submitted status into a workflow state.
// Empty and unknown values read as open.
func NormalizeStatus(value string) Status {
	if s, ok := parseStatus(value); ok {
		return s
	}
	return StatusOpen
}

// ParseStatus is the strict variant of NormalizeStatus used for admin input.
func ParseStatus(value string) (Status, bool) {
	return parseStatus(value)
}

// ParseStatusFilter turns a comma separated query value into the statuses to keep.
// An empty result means no filtering.
func ParseStatusFilter(raw string) []Status {
	out := []Status{}
	seen := make(map[Status]bool)
	for _, part := range strings.Split(raw, ",") {
		s, ok := parseStatus(part)
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// StatusLabel is the upper-case lane name used on the board and in emails.
func StatusLabel(s Status) string {
	switch s {
	case "", StatusOpen:
		return "NEW"
	case StatusPlanned:
		return "PLANNED"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusShipped:
		return "SHIPPED"
	default:
		return strings.ToUpper(string(s))
	}
}
