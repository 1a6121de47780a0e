package mongo

import (
	"context"
	"time"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ensureID(id *string) {
	if *id == "" {
		*id = store.NewID()
	}
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

// -------------------------
// Users
// -------------------------

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	ensureID(&u.ID)
	stamp(&u.CreatedAt)
	_, err := s.users.InsertOne(ctx, u)
	return translate(err)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"email": email})
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, s.users, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
}

func (s *Store) DeleteUsersByEmail(ctx context.Context, email string) (int64, error) {
	res, err := s.users.DeleteMany(ctx, bson.M{"email": email})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

func (s *Store) CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{"role": role})
	return n, translate(err)
}

// -------------------------
// Sources & vendors
// -------------------------

func (s *Store) CreateSource(ctx context.Context, src *models.Source) error {
	ensureID(&src.ID)
	stamp(&src.CreatedAt)
	_, err := s.sources.InsertOne(ctx, src)
	return translate(err)
}

func (s *Store) GetSource(ctx context.Context, id string) (*models.Source, error) {
	return findOne[models.Source](ctx, s.sources, bson.M{"_id": id})
}

func (s *Store) ListSources(ctx context.Context) ([]models.Source, error) {
	return findAll[models.Source](ctx, s.sources, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (s *Store) DeleteSource(ctx context.Context, id string) error {
	return deleteByID(ctx, s.sources, id)
}

func (s *Store) CreateVendor(ctx context.Context, v *models.Vendor) error {
	ensureID(&v.ID)
	stamp(&v.CreatedAt)
	_, err := s.vendors.InsertOne(ctx, v)
	return translate(err)
}

func (s *Store) GetVendor(ctx context.Context, id string) (*models.Vendor, error) {
	return findOne[models.Vendor](ctx, s.vendors, bson.M{"_id": id})
}

func (s *Store) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	return findAll[models.Vendor](ctx, s.vendors, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (s *Store) DeleteVendor(ctx context.Context, id string) error {
	return deleteByID(ctx, s.vendors, id)
}

// -------------------------
// Batches
// -------------------------

var batchOrder = bson.D{{Key: "dateReceived", Value: -1}, {Key: "_id", Value: -1}}

func (s *Store) CreateBatch(ctx context.Context, b *models.Batch) error {
	ensureID(&b.ID)
	stamp(&b.DateReceived)
	_, err := s.batches.InsertOne(ctx, b)
	return translate(err)
}

func (s *Store) ListBatches(ctx context.Context) ([]models.Batch, error) {
	return findAll[models.Batch](ctx, s.batches, bson.M{}, options.Find().SetSort(batchOrder))
}

func (s *Store) ListBatchesPage(ctx context.Context, q store.BatchPageQuery) ([]models.Batch, error) {
	filter := bson.M{}
	if q.After != nil {
		filter = bson.M{"$or": bson.A{
			bson.M{"dateReceived": bson.M{"$lt": q.After.DateReceived}},
			bson.M{"dateReceived": q.After.DateReceived, "_id": bson.M{"$lt": q.After.ID}},
		}}
	}
	opts := options.Find().SetSort(batchOrder)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return findAll[models.Batch](ctx, s.batches, filter, opts)
}

func (s *Store) ListBatchesBetween(ctx context.Context, start, end time.Time) ([]models.Batch, error) {
	filter := bson.M{"dateReceived": bson.M{"$gte": start, "$lte": end}}
	return findAll[models.Batch](ctx, s.batches, filter, options.Find().SetSort(batchOrder))
}

func (s *Store) GetBatchesByIDs(ctx context.Context, ids []string) ([]models.Batch, error) {
	filter, err := membership(ids)
	if err != nil {
		return nil, err
	}
	return findAll[models.Batch](ctx, s.batches, filter)
}

// -------------------------
// Packs
// -------------------------

func (s *Store) CreateSortedPack(ctx context.Context, p *models.SortedPack) error {
	ensureID(&p.ID)
	_, err := s.sortedPacks.InsertOne(ctx, p)
	return translate(err)
}

func (s *Store) ListSortedPacks(ctx context.Context) ([]models.SortedPack, error) {
	return findAll[models.SortedPack](ctx, s.sortedPacks, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (s *Store) GetSortedPacksByIDs(ctx context.Context, ids []string) ([]models.SortedPack, error) {
	filter, err := membership(ids)
	if err != nil {
		return nil, err
	}
	return findAll[models.SortedPack](ctx, s.sortedPacks, filter)
}

func (s *Store) CreateFiberPack(ctx context.Context, p *models.FiberPack) error {
	ensureID(&p.ID)
	stamp(&p.RecycledAt)
	_, err := s.fiberPacks.InsertOne(ctx, p)
	return translate(err)
}

func (s *Store) GetFiberPack(ctx context.Context, id string) (*models.FiberPack, error) {
	return findOne[models.FiberPack](ctx, s.fiberPacks, bson.M{"_id": id})
}

func (s *Store) ListFiberPacks(ctx context.Context) ([]models.FiberPack, error) {
	return s.ListRecentFiberPacks(ctx, 0)
}

func (s *Store) ListRecentFiberPacks(ctx context.Context, limit int) ([]models.FiberPack, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recycledAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findAll[models.FiberPack](ctx, s.fiberPacks, bson.M{}, opts)
}

// -------------------------
// Vendor shipments
// -------------------------

func (s *Store) CreateVendorShipment(ctx context.Context, sh *models.VendorShipment) error {
	ensureID(&sh.ID)
	stamp(&sh.CreatedAt)
	_, err := s.shipments.InsertOne(ctx, sh)
	return translate(err)
}

func (s *Store) GetVendorShipment(ctx context.Context, id string) (*models.VendorShipment, error) {
	return findOne[models.VendorShipment](ctx, s.shipments, bson.M{"_id": id})
}

func (s *Store) ListVendorShipments(ctx context.Context) ([]models.VendorShipment, error) {
	return findAll[models.VendorShipment](ctx, s.shipments, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// -------------------------
// Audit
// -------------------------

func (s *Store) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	ensureID(&l.ID)
	stamp(&l.CreatedAt)
	_, err := s.auditLogs.InsertOne(ctx, l)
	return translate(err)
}

func (s *Store) ListAuditLogs(ctx context.Context, q store.AuditQuery) ([]models.AuditLog, error) {
	filter := bson.M{}
	if q.EntityType != "" {
		filter["entityType"] = q.EntityType
	}
	if q.EntityID != "" {
		filter["entityId"] = q.EntityID
	}
	return findAll[models.AuditLog](ctx, s.auditLogs, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}
