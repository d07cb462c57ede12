package domain

import "strings"

// Kind names one of the two parallel record families.
type Kind string

const (
	KindTicket   Kind = "ticket"
	KindReminder Kind = "reminder"
)

// ParseKind accepts the singular or plural form.
func ParseKind(val string) (Kind, bool) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(val)), "s") {
	case string(KindTicket):
		return KindTicket, true
	case string(KindReminder):
		return KindReminder, true
	}
	return "", false
}
