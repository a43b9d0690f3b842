package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"

	// StatusAll is the filter sentinel meaning "no status predicate".
	StatusAll = "all"
)

const (
	RoleClient = "client"
	RoleOwner  = "owner"
)

// DefaultListLimit caps booking list queries when the caller passes no limit.
const DefaultListLimit = 50

// ValidStatus reports whether s is one of the four legal booking statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

var statusLabels = map[string]string{
	StatusPending:   "en attente",
	StatusConfirmed: "confirmée",
	StatusCancelled: "annulée",
	StatusCompleted: "terminée",
}

// StatusLabel returns the French label shown in dashboard notifications.
// Unknown values pass through unchanged.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}
