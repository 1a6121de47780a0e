// Package mongo implements store.Store on a MongoDB document database, one
// collection per entity.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"circulyte-backend/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger

	users       *mongo.Collection
	sources     *mongo.Collection
	vendors     *mongo.Collection
	batches     *mongo.Collection
	sortedPacks *mongo.Collection
	fiberPacks  *mongo.Collection
	shipments   *mongo.Collection
	auditLogs   *mongo.Collection
}

// Open connects, pings and prepares the indexes the queries rely on.
func Open(ctx context.Context, url, dbName string, logger *zap.Logger) (*Store, error) {
	if url == "" {
		url = "mongodb://localhost:27017"
	}
	if dbName == "" {
		dbName = "circulyte"
	}

	clientOptions := options.Client().ApplyURI(url).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:      client,
		db:          db,
		logger:      logger,
		users:       db.Collection(store.CollectionUsers),
		sources:     db.Collection(store.CollectionSources),
		vendors:     db.Collection(store.CollectionVendors),
		batches:     db.Collection(store.CollectionBatches),
		sortedPacks: db.Collection(store.CollectionSortedPacks),
		fiberPacks:  db.Collection(store.CollectionFiberPacks),
		shipments:   db.Collection(store.CollectionVendorShipments),
		auditLogs:   db.Collection(store.CollectionAuditLogs),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	logger.Info("connected to MongoDB", zap.String("database", dbName))
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.batches, mongo.IndexModel{
			Keys: bson.D{{Key: "dateReceived", Value: -1}, {Key: "_id", Value: -1}},
		}},
		{s.fiberPacks, mongo.IndexModel{
			Keys: bson.D{{Key: "recycledAt", Value: -1}},
		}},
		{s.shipments, mongo.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		}},
		{s.auditLogs, mongo.IndexModel{
			Keys: bson.D{{Key: "entityType", Value: 1}, {Key: "entityId", Value: 1}},
		}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("cannot create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
	}
	s.logger.Info("disconnected from MongoDB")
	return nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	return err
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("could not delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// membership builds an "_id in ids" filter after checking the ceiling.
func membership(ids []string) (bson.M, error) {
	if err := store.CheckMembership(ids); err != nil {
		return nil, err
	}
	return bson.M{"_id": bson.M{"$in": ids}}, nil
}

var _ store.Store = (*Store)(nil)
