package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"

	PermissionView   = "view"
	PermissionManage = "manage"
)

type FamilyConnection struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	RequesterID  string    `gorm:"not null;index" json:"requesterId"`
	RequestedID  string    `gorm:"not null;index" json:"requestedId"`
	Status       string    `gorm:"not null;default:pending" json:"status"`
	Relationship *string   `json:"relationship"`
	Permissions  string    `gorm:"not null;default:view" json:"permissions"`
	Requester    *User     `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Requested    *User     `gorm:"foreignKey:RequestedID" json:"requested,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}

func (connection *FamilyConnection) BeforeCreate(*gorm.DB) error {
	if connection.ID == "" {
		connection.ID = uuid.NewString()
	}
	return nil
}

// Other returns the participant that is not userID.
func (connection FamilyConnection) Other(userID string) *User {
	if connection.RequesterID == userID {
		return connection.Requested
	}
	return connection.Requester
}

func (connection FamilyConnection) Involves(userID string) bool {
	return connection.RequesterID == userID || connection.RequestedID == userID
}
