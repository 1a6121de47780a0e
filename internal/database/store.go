package database

import (
	"context"
	"time"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"
)

// -------------------------
// Users
// -------------------------

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	ensureID(&u.ID)
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("email asc").Find(&users).Error
	return users, translate(err)
}

func (s *Store) DeleteUsersByEmail(ctx context.Context, email string) (int64, error) {
	res := s.db.WithContext(ctx).Where("email = ?", email).Delete(&models.User{})
	return res.RowsAffected, translate(res.Error)
}

func (s *Store) CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&count).Error
	return count, translate(err)
}

// -------------------------
// Sources & vendors
// -------------------------

func (s *Store) CreateSource(ctx context.Context, src *models.Source) error {
	ensureID(&src.ID)
	return translate(s.db.WithContext(ctx).Create(src).Error)
}

func (s *Store) GetSource(ctx context.Context, id string) (*models.Source, error) {
	var src models.Source
	if err := s.db.WithContext(ctx).First(&src, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &src, nil
}

func (s *Store) ListSources(ctx context.Context) ([]models.Source, error) {
	var sources []models.Source
	err := s.db.WithContext(ctx).Order("name asc").Find(&sources).Error
	return sources, translate(err)
}

func (s *Store) DeleteSource(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Source{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateVendor(ctx context.Context, v *models.Vendor) error {
	ensureID(&v.ID)
	return translate(s.db.WithContext(ctx).Create(v).Error)
}

func (s *Store) GetVendor(ctx context.Context, id string) (*models.Vendor, error) {
	var v models.Vendor
	if err := s.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (s *Store) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := s.db.WithContext(ctx).Order("name asc").Find(&vendors).Error
	return vendors, translate(err)
}

func (s *Store) DeleteVendor(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Vendor{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// -------------------------
// Batches
// -------------------------

func (s *Store) CreateBatch(ctx context.Context, b *models.Batch) error {
	ensureID(&b.ID)
	return translate(s.db.WithContext(ctx).Create(b).Error)
}

func (s *Store) ListBatches(ctx context.Context) ([]models.Batch, error) {
	var batches []models.Batch
	err := s.db.WithContext(ctx).Order("date_received desc, id desc").Find(&batches).Error
	return batches, translate(err)
}

func (s *Store) ListBatchesPage(ctx context.Context, q store.BatchPageQuery) ([]models.Batch, error) {
	dbq := s.db.WithContext(ctx).Model(&models.Batch{})
	if q.After != nil {
		dbq = dbq.Where("date_received < ? OR (date_received = ? AND id < ?)",
			q.After.DateReceived, q.After.DateReceived, q.After.ID)
	}
	if q.Limit > 0 {
		dbq = dbq.Limit(q.Limit)
	}

	var batches []models.Batch
	err := dbq.Order("date_received desc, id desc").Find(&batches).Error
	return batches, translate(err)
}

func (s *Store) ListBatchesBetween(ctx context.Context, start, end time.Time) ([]models.Batch, error) {
	var batches []models.Batch
	err := s.db.WithContext(ctx).
		Where("date_received >= ? AND date_received <= ?", start, end).
		Order("date_received desc, id desc").
		Find(&batches).Error
	return batches, translate(err)
}

func (s *Store) GetBatchesByIDs(ctx context.Context, ids []string) ([]models.Batch, error) {
	if err := store.CheckMembership(ids); err != nil {
		return nil, err
	}
	var batches []models.Batch
	if len(ids) == 0 {
		return batches, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&batches).Error
	return batches, translate(err)
}

// -------------------------
// Packs
// -------------------------

func (s *Store) CreateSortedPack(ctx context.Context, p *models.SortedPack) error {
	ensureID(&p.ID)
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *Store) ListSortedPacks(ctx context.Context) ([]models.SortedPack, error) {
	var packs []models.SortedPack
	err := s.db.WithContext(ctx).Order("id asc").Find(&packs).Error
	return packs, translate(err)
}

func (s *Store) GetSortedPacksByIDs(ctx context.Context, ids []string) ([]models.SortedPack, error) {
	if err := store.CheckMembership(ids); err != nil {
		return nil, err
	}
	var packs []models.SortedPack
	if len(ids) == 0 {
		return packs, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&packs).Error
	return packs, translate(err)
}

func (s *Store) CreateFiberPack(ctx context.Context, p *models.FiberPack) error {
	ensureID(&p.ID)
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *Store) GetFiberPack(ctx context.Context, id string) (*models.FiberPack, error) {
	var p models.FiberPack
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) ListFiberPacks(ctx context.Context) ([]models.FiberPack, error) {
	return s.ListRecentFiberPacks(ctx, 0)
}

func (s *Store) ListRecentFiberPacks(ctx context.Context, limit int) ([]models.FiberPack, error) {
	dbq := s.db.WithContext(ctx).Order("recycled_at desc, id desc")
	if limit > 0 {
		dbq = dbq.Limit(limit)
	}
	var packs []models.FiberPack
	err := dbq.Find(&packs).Error
	return packs, translate(err)
}

// -------------------------
// Vendor shipments
// -------------------------

func (s *Store) CreateVendorShipment(ctx context.Context, sh *models.VendorShipment) error {
	ensureID(&sh.ID)
	return translate(s.db.WithContext(ctx).Create(sh).Error)
}

func (s *Store) GetVendorShipment(ctx context.Context, id string) (*models.VendorShipment, error) {
	var sh models.VendorShipment
	if err := s.db.WithContext(ctx).First(&sh, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &sh, nil
}

func (s *Store) ListVendorShipments(ctx context.Context) ([]models.VendorShipment, error) {
	var shipments []models.VendorShipment
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&shipments).Error
	return shipments, translate(err)
}

// -------------------------
// Audit
// -------------------------

func (s *Store) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	ensureID(&l.ID)
	return translate(s.db.WithContext(ctx).Create(l).Error)
}

func (s *Store) ListAuditLogs(ctx context.Context, q store.AuditQuery) ([]models.AuditLog, error) {
	dbq := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if q.EntityType != "" {
		dbq = dbq.Where("entity_type = ?", q.EntityType)
	}
	if q.EntityID != "" {
		dbq = dbq.Where("entity_id = ?", q.EntityID)
	}

	var logs []models.AuditLog
	err := dbq.Order("created_at DESC").Find(&logs).Error
	return logs, translate(err)
}
