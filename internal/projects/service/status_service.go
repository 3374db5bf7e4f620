package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/projecthub/submission-backend/internal/logging"
	"github.com/projecthub/submission-backend/internal/metrics"
	"github.com/projecthub/submission-backend/internal/projects/domain"
)

// StatusReader lists one user's project refs in a given state.
type StatusReader interface {
	ListRefsByStatus(ctx context.Context, ownerID string, status domain.Status) ([]domain.ProjectRef, error)
}

// StatusCache stores computed reports. Implementations must be safe for concurrent use.
// Set must drop the report when the owner's generation moved past gen, and
// Invalidate must advance the generation.
type StatusCache interface {
	Get(ctx context.Context, ownerID string) (*domain.StatusReport, bool, error)
	Generation(ctx context.Context, ownerID string) (int64, error)
	Set(ctx context.Context, ownerID string, gen int64, report *domain.StatusReport) error
	Invalidate(ctx context.Context, ownerID string) error
}

// StatusService answers "which of my projects were approved or rejected".
type StatusService struct {
	repo  StatusReader
	cache StatusCache
}

// NewStatusService creates the status query service. cache may be nil.
func NewStatusService(repo StatusReader, cache StatusCache) *StatusService {
	return &StatusService{repo: repo, cache: cache}
}

// Report returns the caller's approved and rejected projects. Cache failures
// are logged and fall through to the store.
func (s *StatusService) Report(ctx context.Context, ownerID string) (*domain.StatusReport, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("user firebase uid required")
	}
	logger := logging.NewLogger(ctx)

	// The generation is read before the store so a review committed while
	// the lists are loaded keeps this report out of the cache.
	var gen int64
	cacheable := s.cache != nil
	if s.cache != nil {
		report, ok, err := s.cache.Get(ctx, ownerID)
		if err != nil {
			logger.LogError("status_cache_get", err)
		} else if ok {
			metrics.StatusQuery("hit")
			return report, nil
		}

		if gen, err = s.cache.Generation(ctx, ownerID); err != nil {
			logger.LogError("status_cache_generation", err)
			cacheable = false
		}
	}

	accepted, err := s.repo.ListRefsByStatus(ctx, ownerID, domain.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("list approved projects: %w", err)
	}
	rejected, err := s.repo.ListRefsByStatus(ctx, ownerID, domain.StatusRejected)
	if err != nil {
		return nil, fmt.Errorf("list rejected projects: %w", err)
	}
	report := domain.NewStatusReport(accepted, rejected)

	if s.cache == nil {
		metrics.StatusQuery("disabled")
		return report, nil
	}

	metrics.StatusQuery("miss")
	if !cacheable {
		return report, nil
	}
	if err := s.cache.Set(ctx, ownerID, gen, report); err != nil {
		logger.LogError("status_cache_set", err)
	}
	return report, nil
}

// Invalidate drops a user's cached report after one of their projects changed state.
func (s *StatusService) Invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		logging.NewLogger(ctx).LogError("status_cache_invalidate", err)
	}
}
