package models

import "time"

// Source is a registered supplier. Batches reference it by Name only.
type Source struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id" bson:"_id"`
	Name      string    `gorm:"size:150;not null;index" json:"name" bson:"name"`
	Contact   string    `gorm:"size:150" json:"contact" bson:"contact"`
	City      string    `gorm:"size:100" json:"city" bson:"city"`
	Country   string    `gorm:"size:100" json:"country" bson:"country"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
