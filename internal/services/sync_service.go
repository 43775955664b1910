package services

import (
	"context"
	"log/slog"

	"github.com/SJJP-F-2025/requests-service/internal/datasync"
	"github.com/SJJP-F-2025/requests-service/internal/events"
	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

// syncService is the admin-gated front of the data sync engine. It exists so
// handlers never talk to the engine directly and every completed pass leaves
// an event behind.
type syncService struct {
	engine    *datasync.Engine
	publisher events.EventPublisher
	logger    *slog.Logger
}

// NewSyncService wires the sync boundary. A nil engine means no remote store
// is configured; both directions then fail with ErrRemoteNotConfigured.
func NewSyncService(engine *datasync.Engine, publisher events.EventPublisher, logger *slog.Logger) SyncService {
	return &syncService{engine: engine, publisher: publisher, logger: logger}
}

func (s *syncService) Push(ctx context.Context, id models.Identity, opts validator.SyncOptions) (*datasync.Summary, error) {
	if !id.IsAdmin() {
		return nil, NewPermissionError(id.PSNumber, "data sync", "run")
	}
	if s.engine == nil {
		return nil, ErrRemoteNotConfigured
	}

	summary := s.engine.Push(ctx, opts.Force, opts.Replace)
	s.publishCompleted(ctx, "push", id, summary)
	return &summary, nil
}

func (s *syncService) Pull(ctx context.Context, id models.Identity) (*datasync.Summary, error) {
	if !id.IsAdmin() {
		return nil, NewPermissionError(id.PSNumber, "data sync", "run")
	}
	if s.engine == nil {
		return nil, ErrRemoteNotConfigured
	}

	summary := s.engine.Pull(ctx)
	s.publishCompleted(ctx, "pull", id, summary)
	return &summary, nil
}

func (s *syncService) publishCompleted(ctx context.Context, direction string, id models.Identity, summary datasync.Summary) {
	if s.publisher == nil {
		return
	}
	event := events.NewEvent(events.TypeSyncCompleted, map[string]any{
		"direction": direction,
		"by":        id.PSNumber,
		"synced":    summary.Synced,
		"skipped":   summary.Skipped,
		"errors":    summary.Errors,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "type", events.TypeSyncCompleted, "error", err)
	}
}
