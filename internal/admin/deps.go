// Package admin serves the source and vendor registries.
package admin

import (
	"context"

	"circulyte-backend/internal/audit"
	"circulyte-backend/internal/events"
	"circulyte-backend/internal/store"

	"go.uber.org/zap"
)

type Deps struct {
	Sources store.SourceStore
	Vendors store.VendorStore
	Audit   *audit.Service
	Broker  events.Broker
	Logger  *zap.Logger
}

func (d Deps) publish(ctx context.Context, topic, action, id string) {
	if d.Broker == nil {
		return
	}
	if err := events.PublishChange(ctx, d.Broker, topic, action, id); err != nil {
		d.Logger.Warn("publish change failed", zap.String("topic", topic), zap.Error(err))
	}
}

const timeLayout = "2006-01-02 15:04:05"
