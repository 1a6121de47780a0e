package models

import "time"

type SortedPack struct {
	ID       string     `gorm:"primaryKey;size:64" json:"id" bson:"_id"`
	Material string     `gorm:"size:100;index" json:"material" bson:"material"`
	Brand    string     `gorm:"size:100" json:"brand" bson:"brand"`
	Weight   float64    `json:"weight" bson:"weight"`
	SortedAt *time.Time `json:"sortedAt,omitempty" bson:"sortedAt,omitempty"`

	// Empty when the pack was sorted without a recorded batch.
	OriginalBatchID string `gorm:"size:64;index" json:"originalBatchId,omitempty" bson:"originalBatchId,omitempty"`
}
