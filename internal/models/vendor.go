package models

import "time"

type Vendor struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id" bson:"_id"`
	Name        string    `gorm:"size:150;not null" json:"name" bson:"name"`
	Country     string    `gorm:"size:100" json:"country" bson:"country"`
	State       string    `gorm:"size:100" json:"state" bson:"state"`
	ContactInfo string    `gorm:"size:150" json:"contactInfo" bson:"contactInfo"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
