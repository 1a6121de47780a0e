package server

import (
	"context"
	"fmt"

	"circulyte-backend/internal/config"
	"circulyte-backend/internal/database"
	"circulyte-backend/internal/events"
	"circulyte-backend/internal/mongo"
	"circulyte-backend/internal/store"

	"go.uber.org/zap"
)

// OpenStore connects the backend named by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		s, err := database.Open(cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mongo":
		s, err := mongo.Open(ctx, cfg.MongoURL, cfg.MongoDB, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		logger.Warn("using the in-memory store, data is lost on exit")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// OpenBroker returns a NATS broker when cfg.NATSURL is set and an
// in-process one otherwise.
func OpenBroker(cfg *config.Config, logger *zap.Logger) (events.Broker, error) {
	if cfg.NATSURL == "" {
		return events.NewLocalBroker(), nil
	}
	b, err := events.NewNATSBroker(cfg.NATSURL, logger)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return b, nil
}
