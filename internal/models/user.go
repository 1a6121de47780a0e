package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleSorter  UserRole = "sorter"
	RoleManager UserRole = "manager"
	RolePacker  UserRole = "packer"
)

// Valid reports whether r is one of the fixed staff roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleSorter, RoleManager, RolePacker:
		return true
	}
	return false
}

type User struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id" bson:"_id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email" bson:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-" bson:"passwordHash"`
	Role         UserRole  `gorm:"size:20;not null" json:"role" bson:"role"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
