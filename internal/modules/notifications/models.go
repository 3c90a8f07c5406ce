// Package notifications records the toasts shown to the operator.
package notifications

import "time"

// Kind classifies a toast
type Kind string

const (
	KindSuccess    Kind = "success"
	KindMessage    Kind = "message"
	KindError      Kind = "error"
	KindValidation Kind = "validation"
)

// Toast is one notification
type Toast struct {
	ID        string                 `json:"id"`
	Kind      Kind                   `json:"kind"`
	Text      string                 `json:"text"`
	CreatedAt time.Time              `json:"created_at"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
