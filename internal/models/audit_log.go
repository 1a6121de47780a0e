package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id" bson:"_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at" bson:"createdAt"`

	// Who performed the action. Empty for bootstrap operations.
	UserID    string `gorm:"size:64" json:"user_id" bson:"userId"`
	UserEmail string `gorm:"size:100" json:"user_email" bson:"userEmail"`

	// e.g. "source", "vendor", "user"
	EntityType string `gorm:"size:50;index" json:"entity_type" bson:"entityType"`
	EntityID   string `gorm:"size:64;index" json:"entity_id" bson:"entityId"`

	Action      AuditAction `gorm:"size:20" json:"action" bson:"action"`
	Description string      `gorm:"size:255" json:"description" bson:"description"`

	// JSON snapshots before and after the change.
	BeforeData string `gorm:"type:jsonb" json:"before_data" bson:"beforeData"`
	AfterData  string `gorm:"type:jsonb" json:"after_data" bson:"afterData"`
}
