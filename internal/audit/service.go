package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"go.uber.org/zap"
)

type LogOptions struct {
	UserID      string
	UserEmail   string
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

type Service struct {
	store  store.AuditStore
	logger *zap.Logger
}

func NewService(s store.AuditStore, logger *zap.Logger) *Service {
	return &Service{store: s, logger: logger}
}

func (s *Service) WriteLog(ctx context.Context, opts LogOptions) error {
	// jsonb columns reject the empty string, so absent snapshots are "null".
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserEmail:   opts.UserEmail,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := s.store.CreateAuditLog(ctx, &entry); err != nil {
		return fmt.Errorf("could not save audit log: %w", err)
	}
	return nil
}

// Record writes the entry and only logs a failure.
func (s *Service) Record(ctx context.Context, opts LogOptions) {
	if err := s.WriteLog(ctx, opts); err != nil {
		s.logger.Warn("audit log write failed",
			zap.String("entity_type", opts.EntityType),
			zap.String("entity_id", opts.EntityID),
			zap.Error(err))
	}
}

func (s *Service) List(ctx context.Context, q store.AuditQuery) ([]models.AuditLog, error) {
	return s.store.ListAuditLogs(ctx, q)
}
