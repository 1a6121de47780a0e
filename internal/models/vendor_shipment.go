package models

import "time"

// ShipmentPackDetail is a denormalized snapshot of a fiber pack at shipping time.
type ShipmentPackDetail struct {
	PackID   string  `json:"packId" bson:"packId"`
	Weight   float64 `json:"weight" bson:"weight"`
	Material string  `json:"material" bson:"material"`
	Source   string  `json:"source" bson:"source"`
	Status   string  `json:"status" bson:"status"`
}

type VendorShipment struct {
	ID                string               `gorm:"primaryKey;size:64" json:"id" bson:"_id"`
	VendorName        string               `gorm:"size:150;index" json:"vendorName" bson:"vendorName"`
	VehicleNumber     string               `gorm:"size:50" json:"vehicleNumber" bson:"vehicleNumber"`
	DriverName        string               `gorm:"size:100" json:"driverName" bson:"driverName"`
	DriverContact     string               `gorm:"size:100" json:"driverContact" bson:"driverContact"`
	CreatedAt         time.Time            `gorm:"index" json:"createdAt" bson:"createdAt"`
	FiberPacksDetails []ShipmentPackDetail `gorm:"serializer:json;type:jsonb" json:"fiberPacksDetails" bson:"fiberPacksDetails"`
}
