package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/refdata-service/internal/events"
	"github.com/SAP-F-2025/refdata-service/internal/models"
	"github.com/SAP-F-2025/refdata-service/internal/stats"
	"github.com/google/uuid"
)

// ImportEventService publishes the outcome of committed imports to downstream consumers
type ImportEventService interface {
	NotifyImportCommitted(ctx context.Context, job *models.ImportJob, dataTypes []string, counts stats.Map) error
}

type importEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewImportEventService(eventPublisher events.EventPublisher, logger *slog.Logger) ImportEventService {
	return &importEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *importEventService) NotifyImportCommitted(ctx context.Context, job *models.ImportJob, dataTypes []string, counts stats.Map) error {
	s.logger.Info("Publishing import committed event", "job_id", job.ID, "kind", job.Kind)

	if dataTypes == nil {
		dataTypes = counts.Keys()
	}

	event := &events.ImportEvent{
		ID:        uuid.NewString(),
		Type:      events.EventImportCommitted,
		Timestamp: time.Now(),
		Source:    events.EventSource,
		Version:   events.EventVersion,
		Data: events.ImportCommittedEvent{
			JobID:     job.ID,
			Kind:      string(job.Kind),
			UserID:    job.UserID,
			DataTypes: dataTypes,
			Stats:     counts,
			Committed: job.CreatedAt,
		},
		Metadata: map[string]interface{}{
			"file_name": job.FileName,
		},
	}

	if err := s.eventPublisher.PublishImportEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to publish import committed event: %w", err)
	}
	return nil
}
