package domain

import (
	"strconv"
	"strings"
)

// Status enumerates lifecycle states for tracked records. Values are the labels
// persisted in the store files.
type Status string

const (
	StatusOnHold     Status = "OnHold"
	StatusInProgress Status = "In Progress"
	StatusUrgent     Status = "Urgent"
	StatusMedium     Status = "Medium"
	StatusLowUrgency Status = "Low Urgency"
	StatusDone       Status = "Done"
)

// Statuses lists every status in menu order.
var Statuses = []Status{
	StatusOnHold,
	StatusInProgress,
	StatusUrgent,
	StatusMedium,
	StatusLowUrgency,
	StatusDone,
}

// IsTerminal reports whether the status moves a record into the archive.
func (s Status) IsTerminal() bool {
	return s == StatusDone
}

// IsKnown reports whether s is one of the six defined statuses. Unknown values
// read from disk are still carried through unchanged.
func (s Status) IsKnown() bool {
	for _, candidate := range Statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStatus accepts a label ("In Progress"), a compact name ("InProgress") or a
// 1-based menu index ("2").
func ParseStatus(val string) (Status, bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return "", false
	}
	if idx, err := strconv.Atoi(val); err == nil {
		if idx < 1 || idx > len(Statuses) {
			return "", false
		}
		return Statuses[idx-1], true
	}
	compact := strings.ToLower(strings.ReplaceAll(val, " ", ""))
	for _, candidate := range Statuses {
		if strings.ToLower(strings.ReplaceAll(string(candidate), " ", "")) == compact {
			return candidate, true
		}
	}
	return "", false
}
