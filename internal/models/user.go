package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             string     `gorm:"primaryKey;type:text" json:"id"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	Name           string     `gorm:"not null" json:"name"`
	Picture        *string    `json:"picture"`
	Age            *int       `json:"age"`
	GoogleID       *string    `gorm:"uniqueIndex" json:"-"`
	PasswordHash   string     `gorm:"not null;default:''" json:"-"`
	Streak         int        `gorm:"not null;default:0" json:"streak"`
	LastActiveDate *time.Time `json:"lastActiveDate"`
	StreakVersion  int64      `gorm:"not null;default:0" json:"-"`
	CreatedAt      time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updatedAt"`
}

func (user *User) BeforeCreate(*gorm.DB) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return nil
}

func (user User) HasPassword() bool {
	return user.PasswordHash != ""
}

// StreakUpdate is a compare-and-swap write of the cached streak.
type StreakUpdate struct {
	UserID          string
	Streak          int
	LastActiveDate  time.Time
	ExpectedVersion int64
}
