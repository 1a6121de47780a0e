package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"circulyte-backend/internal/models"
)

// MemoryStore keeps every collection in process memory. It backs the tests
// and demo runs; it enforces the same membership ceiling as the real backends.
type MemoryStore struct {
	mu sync.RWMutex

	users       map[string]models.User
	sources     map[string]models.Source
	vendors     map[string]models.Vendor
	batches     map[string]models.Batch
	sortedPacks map[string]models.SortedPack
	fiberPacks  map[string]models.FiberPack
	shipments   map[string]models.VendorShipment
	auditLogs   []models.AuditLog

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]models.User),
		sources:     make(map[string]models.Source),
		vendors:     make(map[string]models.Vendor),
		batches:     make(map[string]models.Batch),
		sortedPacks: make(map[string]models.SortedPack),
		fiberPacks:  make(map[string]models.FiberPack),
		shipments:   make(map[string]models.VendorShipment),
		now:         time.Now,
	}
}

func (m *MemoryStore) Close(ctx context.Context) error { return nil }

func (m *MemoryStore) stamp(t *time.Time) {
	if t.IsZero() {
		*t = m.now()
	}
}

func ensureID(id *string) {
	if *id == "" {
		*id = NewID()
	}
}

// -------------------------
// Users
// -------------------------

func (m *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	ensureID(&u.ID)
	if _, ok := m.users[u.ID]; ok {
		return ErrDuplicate
	}
	m.stamp(&u.CreatedAt)
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MemoryStore) DeleteUsersByEmail(ctx context.Context, email string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, u := range m.users {
		if u.Email == email {
			delete(m.users, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// -------------------------
// Sources & vendors
// -------------------------

func (m *MemoryStore) CreateSource(ctx context.Context, s *models.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ensureID(&s.ID)
	m.stamp(&s.CreatedAt)
	m.sources[s.ID] = *s
	return nil
}

func (m *MemoryStore) GetSource(ctx context.Context, id string) (*models.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sources[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) ListSources(ctx context.Context) ([]models.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Source, 0, len(m.sources))
	for _, s := range m.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) DeleteSource(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sources[id]; !ok {
		return ErrNotFound
	}
	delete(m.sources, id)
	return nil
}

func (m *MemoryStore) CreateVendor(ctx context.Context, v *models.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ensureID(&v.ID)
	m.stamp(&v.CreatedAt)
	m.vendors[v.ID] = *v
	return nil
}

func (m *MemoryStore) GetVendor(ctx context.Context, id string) (*models.Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.vendors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (m *MemoryStore) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Vendor, 0, len(m.vendors))
	for _, v := range m.vendors {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) DeleteVendor(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.vendors[id]; !ok {
		return ErrNotFound
	}
	delete(m.vendors, id)
	return nil
}

// -------------------------
// Batches
// -------------------------

func (m *MemoryStore) CreateBatch(ctx context.Context, b *models.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ensureID(&b.ID)
	m.stamp(&b.DateReceived)
	m.batches[b.ID] = *b
	return nil
}

func (m *MemoryStore) sortedBatches() []models.Batch {
	out := make([]models.Batch, 0, len(m.batches))
	for _, b := range m.batches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateReceived.Equal(out[j].DateReceived) {
			return out[i].DateReceived.After(out[j].DateReceived)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *MemoryStore) ListBatches(ctx context.Context) ([]models.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sortedBatches(), nil
}

func (m *MemoryStore) ListBatchesPage(ctx context.Context, q BatchPageQuery) ([]models.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Batch, 0, q.Limit)
	for _, b := range m.sortedBatches() {
		if q.After != nil && !q.After.Precedes(b) {
			continue
		}
		out = append(out, b)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) ListBatchesBetween(ctx context.Context, start, end time.Time) ([]models.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Batch, 0)
	for _, b := range m.sortedBatches() {
		if b.DateReceived.Before(start) || b.DateReceived.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *MemoryStore) GetBatchesByIDs(ctx context.Context, ids []string) ([]models.Batch, error) {
	if err := CheckMembership(ids); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Batch, 0, len(ids))
	for _, id := range Distinct(ids) {
		if b, ok := m.batches[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// -------------------------
// Packs
// -------------------------

func (m *MemoryStore) CreateSortedPack(ctx context.Context, p *models.SortedPack) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ensureID(&p.ID)
	m.sortedPacks[p.ID] = *p
	return nil
}

func (m *MemoryStore) ListSortedPacks(ctx context.Context) ([]models.SortedPack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.SortedPack, 0, len(m.sortedPacks))
	for _, p := range m.sortedPacks {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetSortedPacksByIDs(ctx context.Context, ids []string) ([]models.SortedPack, error) {
	if err := CheckMembership(ids); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.SortedPack, 0, len(ids))
	for _, id := range Distinct(ids) {
		if p, ok := m.sortedPacks[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func copyFiberPack(p models.FiberPack) models.FiberPack {
	p.Materials = append([]string(nil), p.Materials...)
	p.Colors = append([]string(nil), p.Colors...)
	p.FromSortedPacks = append([]string(nil), p.FromSortedPacks...)
	return p
}

func (m *MemoryStore) CreateFiberPack(ctx context.Context, p *models.FiberPack) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ensureID(&p.ID)
	m.stamp(&p.RecycledAt)
	m.fiberPacks[p.ID] = copyFiberPack(*p)
	return nil
}

func (m *MemoryStore) GetFiberPack(ctx context.Context, id string) (*models.FiberPack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.fiberPacks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyFiberPack(p)
	return &cp, nil
}

func (m *MemoryStore) ListFiberPacks(ctx context.Context) ([]models.FiberPack, error) {
	return m.ListRecentFiberPacks(ctx, 0)
}

func (m *MemoryStore) ListRecentFiberPacks(ctx context.Context, limit int) ([]models.FiberPack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.FiberPack, 0, len(m.fiberPacks))
	for _, p := range m.fiberPacks {
		out = append(out, copyFiberPack(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecycledAt.Equal(out[j].RecycledAt) {
			return out[i].RecycledAt.After(out[j].RecycledAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// -------------------------
// Vendor shipments
// -------------------------

func (m *MemoryStore) CreateVendorShipment(ctx context.Context, s *models.VendorShipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ensureID(&s.ID)
	m.stamp(&s.CreatedAt)
	cp := *s
	cp.FiberPacksDetails = append([]models.ShipmentPackDetail(nil), s.FiberPacksDetails...)
	m.shipments[s.ID] = cp
	return nil
}

func (m *MemoryStore) GetVendorShipment(ctx context.Context, id string) (*models.VendorShipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.shipments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) ListVendorShipments(ctx context.Context) ([]models.VendorShipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.VendorShipment, 0, len(m.shipments))
	for _, s := range m.shipments {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// -------------------------
// Audit
// -------------------------

func (m *MemoryStore) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ensureID(&l.ID)
	m.stamp(&l.CreatedAt)
	m.auditLogs = append(m.auditLogs, *l)
	return nil
}

func (m *MemoryStore) ListAuditLogs(ctx context.Context, q AuditQuery) ([]models.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.AuditLog, 0, len(m.auditLogs))
	for i := len(m.auditLogs) - 1; i >= 0; i-- {
		l := m.auditLogs[i]
		if q.EntityType != "" && l.EntityType != q.EntityType {
			continue
		}
		if q.EntityID != "" && l.EntityID != q.EntityID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
