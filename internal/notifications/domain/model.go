package domain

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("notification not found")

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Notification tells a user about a review decision on one of their projects.
type Notification struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"user_id"`
	ProjectID   *string    `json:"project_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// ClampLimit keeps a requested page size within (0, MaxListLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}
