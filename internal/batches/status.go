package batches

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the lifecycle state of a batch.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Statuses lists every batch status in lifecycle order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed}

// ParseStatus converts s (case-insensitive) into a Status.
func ParseStatus(s string) (Status, error) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if st == candidate {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Terminal reports whether no further processing transition applies.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// UnmarshalJSON rejects values outside the status enum.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ReviewStatus is the review state of a suggested update.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "PENDING_REVIEW"
	ReviewAccepted ReviewStatus = "ACCEPTED"
	ReviewRejected ReviewStatus = "REJECTED"
)
