package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/projecthub/submission-backend/internal/projects/domain"
)

const projectColumns = `id, user_firebase_uid, title, description, file_key, file_name, file_size,
       content_type, status, reviewed_at, created_at, updated_at`

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project. The caller assigns the ID.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("project id required")
	}
	if strings.TrimSpace(p.OwnerID) == "" {
		return fmt.Errorf("user firebase uid required")
	}
	if p.Status == "" {
		p.Status = domain.StatusPending
	}

	const q = `
INSERT INTO projects (id, user_firebase_uid, title, description, file_key, file_name, file_size, content_type, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at, updated_at;
`
	return r.db.QueryRowContext(ctx, q,
		p.ID, p.OwnerID, p.Title, p.Description,
		p.FileKey, p.FileName, p.FileSize, p.ContentType, string(p.Status),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns a project regardless of owner.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1;`

	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// ListByOwner returns every project of a user, oldest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	q := `SELECT ` + projectColumns + `
FROM projects
WHERE user_firebase_uid = $1
ORDER BY created_at, id;`
	return r.list(ctx, q, ownerID)
}

// ListByStatus returns projects of every user in the given state, oldest first.
func (r *ProjectRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Project, error) {
	q := `SELECT ` + projectColumns + `
FROM projects
WHERE status = $1
ORDER BY created_at, id;`
	return r.list(ctx, q, string(status))
}

// ListRefsByStatus returns id and title of one user's projects in the given state.
func (r *ProjectRepository) ListRefsByStatus(ctx context.Context, ownerID string, status domain.Status) ([]domain.ProjectRef, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("user firebase uid required")
	}

	const q = `
SELECT id, title
FROM projects
WHERE user_firebase_uid = $1 AND status = $2
ORDER BY created_at, id;
`
	rows, err := r.db.QueryContext(ctx, q, ownerID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ProjectRef, 0, 16)
	for rows.Next() {
		var ref domain.ProjectRef
		if err := rows.Scan(&ref.ID, &ref.Title); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus moves a project from one state to another inside a transaction.
// It returns ErrNotFound for unknown ids and ErrAlreadyReviewed when the
// current state differs from "from".
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) (*domain.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, `
SELECT status
FROM projects
WHERE id = $1
FOR UPDATE
`, id).Scan(&current)
	if err != nil {
		return nil, translate(err)
	}
	if domain.Status(current) != from {
		return nil, domain.ErrAlreadyReviewed
	}

	q := `
UPDATE projects
SET status = $2, reviewed_at = now(), updated_at = now()
WHERE id = $1
RETURNING ` + projectColumns + `;`
	p, err := scanProject(tx.QueryRowContext(ctx, q, id, string(to)))
	if err != nil {
		return nil, translate(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) list(ctx context.Context, q string, args ...interface{}) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var status string
	var reviewedAt sql.NullTime

	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description,
		&p.FileKey, &p.FileName, &p.FileSize, &p.ContentType,
		&status, &reviewedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Status = domain.Status(status)
	if reviewedAt.Valid {
		p.ReviewedAt = &reviewedAt.Time
	}
	return &p, nil
}

// translate maps "no row" and malformed uuid input to ErrNotFound.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return domain.ErrNotFound
	}
	return err
}
