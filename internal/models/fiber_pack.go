package models

import "time"

// FiberPack is the terminal recycled unit produced from one or more sorted packs.
type FiberPack struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id" bson:"_id"`
	Weight          float64   `json:"weight" bson:"weight"`
	RecycledAt      time.Time `gorm:"index" json:"recycledAt" bson:"recycledAt"`
	Materials       []string  `gorm:"serializer:json;type:jsonb" json:"materials" bson:"materials"`
	Colors          []string  `gorm:"serializer:json;type:jsonb" json:"colors" bson:"colors"`
	FromSortedPacks []string  `gorm:"serializer:json;type:jsonb" json:"fromSortedPacks" bson:"fromSortedPacks"`
}
