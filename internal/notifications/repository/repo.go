package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/projecthub/submission-backend/internal/notifications/domain"
)

const notificationColumns = `id, user_firebase_uid, project_id, title, description, status, read_at, created_at`

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts n. The caller assigns the ID.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if strings.TrimSpace(n.OwnerID) == "" {
		return fmt.Errorf("user firebase uid required")
	}

	const q = `
INSERT INTO notifications (id, user_firebase_uid, project_id, title, description, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at;
`
	var projectID sql.NullString
	if n.ProjectID != nil {
		projectID = sql.NullString{String: *n.ProjectID, Valid: true}
	}
	return r.db.QueryRowContext(ctx, q,
		n.ID, n.OwnerID, projectID, n.Title, n.Description, n.Status,
	).Scan(&n.CreatedAt)
}

// ListByOwner returns the newest notifications of a user first.
func (r *NotificationRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Notification, error) {
	q := `SELECT ` + notificationColumns + `
FROM notifications
WHERE user_firebase_uid = $1
ORDER BY created_at DESC, id DESC
LIMIT $2;`

	rows, err := r.db.QueryContext(ctx, q, ownerID, domain.ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Notification, 0, 16)
	for rows.Next() {
		var n domain.Notification
		var projectID sql.NullString
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.OwnerID, &projectID, &n.Title, &n.Description, &n.Status, &readAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if projectID.Valid {
			n.ProjectID = &projectID.String
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead sets read_at on the owner's notification. Already-read rows keep their timestamp.
func (r *NotificationRepository) MarkRead(ctx context.Context, ownerID, id string) error {
	const q = `
UPDATE notifications
SET read_at = COALESCE(read_at, now())
WHERE id = $1 AND user_firebase_uid = $2;
`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
			return domain.ErrNotFound
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteReadBefore removes notifications read before cutoff and reports how many were deleted.
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `
DELETE FROM notifications
WHERE read_at IS NOT NULL AND read_at < $1;
`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
