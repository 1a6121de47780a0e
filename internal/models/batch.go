package models

import "time"

// Batch is the receiving record for material coming in from a Source.
type Batch struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id" bson:"_id"`
	Source       string    `gorm:"size:150;index" json:"source" bson:"source"`
	BoxCount     int       `json:"boxCount" bson:"boxCount"`
	DateReceived time.Time `gorm:"index" json:"dateReceived" bson:"dateReceived"`
	CreatedBy    string    `gorm:"size:100" json:"createdBy" bson:"createdBy"`
}
