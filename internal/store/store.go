// Package store defines the data-access capability shared by every backend.
//
// Reads are pull-once snapshots: a caller sees the collection as it was when
// the call returned and nothing is refreshed behind its back. Collections that
// need push updates (sources, vendors, users) publish change events through
// the events package; consumers that care about freshness subscribe there.
package store

import (
	"context"
	"errors"
	"time"

	"circulyte-backend/internal/models"

	"github.com/google/uuid"
)

// MaxMembership is the largest id list accepted by a single membership query.
// Callers with more ids split them with Chunk.
const MaxMembership = 30

// Collection names, shared by the document backend and the event topics.
const (
	CollectionUsers           = "users"
	CollectionSources         = "sources"
	CollectionVendors         = "vendors"
	CollectionBatches         = "batches"
	CollectionSortedPacks     = "sortedPacks"
	CollectionFiberPacks      = "fiberPacks"
	CollectionVendorShipments = "vendorShipments"
	CollectionAuditLogs       = "auditLogs"
)

var (
	ErrNotFound          = errors.New("store: not found")
	ErrDuplicate         = errors.New("store: duplicate key")
	ErrMembershipCeiling = errors.New("store: membership list exceeds ceiling")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUsersByEmail(ctx context.Context, email string) (int64, error)
	CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error)
}

type SourceStore interface {
	CreateSource(ctx context.Context, s *models.Source) error
	GetSource(ctx context.Context, id string) (*models.Source, error)
	ListSources(ctx context.Context) ([]models.Source, error)
	DeleteSource(ctx context.Context, id string) error
}

type VendorStore interface {
	CreateVendor(ctx context.Context, v *models.Vendor) error
	GetVendor(ctx context.Context, id string) (*models.Vendor, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	DeleteVendor(ctx context.Context, id string) error
}

// BatchPageQuery asks for at most Limit batches ordered by dateReceived
// descending, starting strictly after the After cursor when it is set.
type BatchPageQuery struct {
	After *BatchCursor
	Limit int
}

type BatchStore interface {
	CreateBatch(ctx context.Context, b *models.Batch) error
	ListBatches(ctx context.Context) ([]models.Batch, error)
	ListBatchesPage(ctx context.Context, q BatchPageQuery) ([]models.Batch, error)
	// ListBatchesBetween returns batches received in [start, end], newest first.
	ListBatchesBetween(ctx context.Context, start, end time.Time) ([]models.Batch, error)
	GetBatchesByIDs(ctx context.Context, ids []string) ([]models.Batch, error)
}

type SortedPackStore interface {
	CreateSortedPack(ctx context.Context, p *models.SortedPack) error
	ListSortedPacks(ctx context.Context) ([]models.SortedPack, error)
	GetSortedPacksByIDs(ctx context.Context, ids []string) ([]models.SortedPack, error)
}

type FiberPackStore interface {
	CreateFiberPack(ctx context.Context, p *models.FiberPack) error
	GetFiberPack(ctx context.Context, id string) (*models.FiberPack, error)
	ListFiberPacks(ctx context.Context) ([]models.FiberPack, error)
	// ListRecentFiberPacks returns up to limit packs, most recently recycled first.
	ListRecentFiberPacks(ctx context.Context, limit int) ([]models.FiberPack, error)
}

type ShipmentStore interface {
	CreateVendorShipment(ctx context.Context, s *models.VendorShipment) error
	GetVendorShipment(ctx context.Context, id string) (*models.VendorShipment, error)
	// ListVendorShipments returns every shipment, newest first.
	ListVendorShipments(ctx context.Context) ([]models.VendorShipment, error)
}

type AuditQuery struct {
	EntityType string
	EntityID   string
}

type AuditStore interface {
	CreateAuditLog(ctx context.Context, l *models.AuditLog) error
	ListAuditLogs(ctx context.Context, q AuditQuery) ([]models.AuditLog, error)
}

// Store is the full capability a backend provides.
type Store interface {
	UserStore
	SourceStore
	VendorStore
	BatchStore
	SortedPackStore
	FiberPackStore
	ShipmentStore
	AuditStore

	Close(ctx context.Context) error
}

// NewID returns a fresh opaque document identifier.
func NewID() string {
	return uuid.NewString()
}

// CheckMembership rejects id lists a single membership query cannot serve.
func CheckMembership(ids []string) error {
	if len(ids) > MaxMembership {
		return ErrMembershipCeiling
	}
	return nil
}

// Distinct drops empty and repeated ids, keeping first-seen order.
func Distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Chunk splits ids into consecutive slices of at most size elements.
func Chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = MaxMembership
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
