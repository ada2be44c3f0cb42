package analytics

import "strings"

// Status is the closed vocabulary of task update states.
type Status int

const (
	StatusOther Status = iota
	StatusNotStarted
	StatusInProgress
	StatusCompleted
	StatusOnHold
	StatusCancelled
)

var statusLabels = map[Status]string{
	StatusOther:      "Other",
	StatusNotStarted: "Not Started",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
	StatusOnHold:     "On Hold",
	StatusCancelled:  "Cancelled",
}

var statusByKey = map[string]Status{
	"not started": StatusNotStarted,
	"in progress": StatusInProgress,
	"completed":   StatusCompleted,
	"on hold":     StatusOnHold,
	"cancelled":   StatusCancelled,
	"canceled":    StatusCancelled,
}

// ParseStatus maps a free-form status string onto the vocabulary.
// Matching ignores case and treats '_' and '-' as spaces. Unknown
// strings map to StatusOther.
func ParseStatus(s string) Status {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")
	if st, ok := statusByKey[key]; ok {
		return st
	}
	return StatusOther
}

// String returns the canonical display label.
func (s Status) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return statusLabels[StatusOther]
}

// Key returns a snake_case identifier suitable for JSON and metric labels.
func (s Status) Key() string {
	return strings.ReplaceAll(strings.ToLower(s.String()), " ", "_")
}

// Tracked reports whether the aggregator counts the status as progress.
func (s Status) Tracked() bool {
	return s == StatusCompleted || s == StatusInProgress
}

// MarshalText encodes the status by its key.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.Key()), nil
}
