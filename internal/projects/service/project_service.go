package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/projecthub/submission-backend/internal/logging"
	"github.com/projecthub/submission-backend/internal/metrics"
	"github.com/projecthub/submission-backend/internal/projects/domain"
	"github.com/projecthub/submission-backend/internal/storage/blob"
)

const (
	MaxTitleLength     = 200
	DefaultMaxFileSize = 10 << 20
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// ProjectStore is the persistence the project service needs.
type ProjectStore interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Project, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.Status) (*domain.Project, error)
}

// ReviewNotifier is told about every review decision so the owner can be notified.
type ReviewNotifier interface {
	ProjectReviewed(ctx context.Context, p *domain.Project, note string) error
}

// StatusInvalidator drops cached status reports.
type StatusInvalidator interface {
	Invalidate(ctx context.Context, ownerID string)
}

// ProjectService handles project submission and review
type ProjectService struct {
	repo        ProjectStore
	blobs       blob.Store
	notifier    ReviewNotifier
	status      StatusInvalidator
	maxFileSize int64
}

// NewProjectService creates a new project service. notifier and status may be nil.
func NewProjectService(repo ProjectStore, blobs blob.Store, notifier ReviewNotifier, status StatusInvalidator, maxFileSize int64) *ProjectService {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &ProjectService{
		repo:        repo,
		blobs:       blobs,
		notifier:    notifier,
		status:      status,
		maxFileSize: maxFileSize,
	}
}

func (s *ProjectService) MaxFileSize() int64 {
	return s.maxFileSize
}

// Submit stores the uploaded file and records a pending project for ownerID.
func (s *ProjectService) Submit(ctx context.Context, ownerID string, in domain.NewSubmission) (*domain.Project, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("user firebase uid required")
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	switch {
	case title == "":
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return nil, fmt.Errorf("%w: title must be at most %d characters", domain.ErrInvalidInput, MaxTitleLength)
	case description == "":
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	case in.Body == nil || strings.TrimSpace(in.FileName) == "":
		return nil, fmt.Errorf("%w: file is required", domain.ErrInvalidInput)
	case in.Size > s.maxFileSize:
		return nil, fmt.Errorf("%w: limit is %d bytes", domain.ErrFileTooLarge, s.maxFileSize)
	}

	id := uuid.NewString()
	fileName := filepath.Base(in.FileName)
	key := fmt.Sprintf("projects/%s/%s%s",
		unsafeKeyChars.ReplaceAllString(ownerID, "_"),
		id,
		strings.ToLower(filepath.Ext(fileName)),
	)
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := s.blobs.Put(ctx, key, in.Body, in.Size, contentType); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	p := &domain.Project{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		FileKey:     key,
		FileName:    fileName,
		FileSize:    in.Size,
		ContentType: contentType,
		Status:      domain.StatusPending,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			logging.NewLogger(ctx).LogError("submit_cleanup", derr)
		}
		return nil, fmt.Errorf("create project: %w", err)
	}

	metrics.ProjectSubmitted()
	return p, nil
}

// ListMine returns all projects owned by ownerID.
func (s *ProjectService) ListMine(ctx context.Context, ownerID string) ([]domain.Project, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListByStatus returns every user's projects in the given state (admin view).
func (s *ProjectService) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Project, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.ListByStatus(ctx, status)
}

// Get returns a project visible to the requester. Projects of other users
// are reported as not found unless the requester is an admin.
func (s *ProjectService) Get(ctx context.Context, requesterID string, isAdmin bool, id string) (*domain.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != requesterID && !isAdmin {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// OpenFile returns the project and a reader over its uploaded file.
// The caller must close the reader.
func (s *ProjectService) OpenFile(ctx context.Context, requesterID string, isAdmin bool, id string) (*domain.Project, io.ReadCloser, error) {
	p, err := s.Get(ctx, requesterID, isAdmin, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, p.FileKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	return p, rc, nil
}

// Review records an admin decision on a pending project.
func (s *ProjectService) Review(ctx context.Context, id string, decision domain.Status, note string) (*domain.Project, error) {
	if !decision.IsDecision() {
		return nil, domain.ErrInvalidStatus
	}

	p, err := s.repo.UpdateStatus(ctx, id, domain.StatusPending, decision)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(ctx)
	if s.notifier != nil {
		if err := s.notifier.ProjectReviewed(ctx, p, strings.TrimSpace(note)); err != nil {
			logger.LogError("review_notify", err)
		}
	}
	if s.status != nil {
		s.status.Invalidate(ctx, p.OwnerID)
	}

	metrics.ProjectReviewed(string(decision))
	logger.LogInfof("review", "project_id=%s status=%s", p.ID, decision)
	return p, nil
}
