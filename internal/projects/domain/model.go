package domain

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Status is the review lifecycle state of a project.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// IsDecision reports whether s is a terminal review outcome.
func (s Status) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, v)
	}
	return s, nil
}

// Project is a user submission awaiting or carrying an admin decision.
// FileKey references the uploaded file in the blob store.
type Project struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FileKey     string     `json:"file_key"`
	FileName    string     `json:"file_name"`
	FileSize    int64      `json:"file_size"`
	ContentType string     `json:"content_type"`
	Status      Status     `json:"status"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProjectRef is the reduced projection served by the status endpoint.
type ProjectRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// StatusReport partitions one user's reviewed projects by outcome.
// Both sequences always serialize as arrays, never null.
type StatusReport struct {
	Accepted []ProjectRef `json:"acceptedproject"`
	Rejected []ProjectRef `json:"rejectedproject"`
}

func NewStatusReport(accepted, rejected []ProjectRef) *StatusReport {
	if accepted == nil {
		accepted = []ProjectRef{}
	}
	if rejected == nil {
		rejected = []ProjectRef{}
	}
	return &StatusReport{Accepted: accepted, Rejected: rejected}
}

// NewSubmission carries the fields of the creation endpoint into the service.
type NewSubmission struct {
	Title       string
	Description string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}
