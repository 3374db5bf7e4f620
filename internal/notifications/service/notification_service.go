package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/projecthub/submission-backend/internal/logging"
	"github.com/projecthub/submission-backend/internal/metrics"
	"github.com/projecthub/submission-backend/internal/notifications/domain"
	projectdomain "github.com/projecthub/submission-backend/internal/projects/domain"
)

// Store is the persistence the notification service needs.
type Store interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, ownerID, id string) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type NotificationService struct {
	repo Store
	now  func() time.Time
}

func NewNotificationService(repo Store) *NotificationService {
	return &NotificationService{repo: repo, now: time.Now}
}

// ProjectReviewed records a notification for the owner of a reviewed project.
func (s *NotificationService) ProjectReviewed(ctx context.Context, p *projectdomain.Project, note string) error {
	description := strings.TrimSpace(note)
	if description == "" {
		description = defaultDescription(p.Status)
	}

	projectID := p.ID
	n := &domain.Notification{
		ID:          uuid.NewString(),
		OwnerID:     p.OwnerID,
		ProjectID:   &projectID,
		Title:       p.Title,
		Description: description,
		Status:      string(p.Status),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, ownerID string, limit int) ([]domain.Notification, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("user firebase uid required")
	}
	return s.repo.ListByOwner(ctx, ownerID, domain.ClampLimit(limit))
}

func (s *NotificationService) MarkRead(ctx context.Context, ownerID, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrNotFound
	}
	return s.repo.MarkRead(ctx, ownerID, id)
}

// PurgeRead deletes notifications that were read more than olderThan ago.
func (s *NotificationService) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("retention window must be positive")
	}
	cutoff := s.now().Add(-olderThan)

	n, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge read notifications: %w", err)
	}

	metrics.NotificationsPurged(n)
	logging.NewLogger(ctx).LogInfof("purge_notifications", "deleted=%d cutoff=%s", n, cutoff.Format(time.RFC3339))
	return n, nil
}

func defaultDescription(status projectdomain.Status) string {
	switch status {
	case projectdomain.StatusApproved:
		return "Your project has been approved."
	case projectdomain.StatusRejected:
		return "Your project has been rejected."
	}
	return "Your project status has changed."
}
