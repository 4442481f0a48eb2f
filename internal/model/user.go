package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan represents a user's subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// User represents an authenticated user. Plan and FreeUsage are the
// entitlement metadata consumed by the quota gate; FreeUsage counts metered
// feature invocations and only ever changes through
// UserRepository.IncrementFreeUsage.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Name         string    `json:"name" gorm:"size:255;not null"`
	Plan         Plan      `json:"plan" gorm:"type:varchar(20);not null;default:'free'"`
	FreeUsage    int       `json:"free_usage" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
