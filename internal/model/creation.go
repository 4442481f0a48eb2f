package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreationType classifies what kind of output a creation holds.
type CreationType string

const (
	CreationTypeArticle      CreationType = "article"
	CreationTypeBlogTitle    CreationType = "blog-title"
	CreationTypeImage        CreationType = "image"
	CreationTypeResumeReview CreationType = "resume-review"
)

// LikeSet is the set of user ids that liked a creation, stored as a JSON
// array. Membership is only changed by toggling the requesting user's id.
type LikeSet []string

// Value implements driver.Valuer.
func (l LikeSet) Value() (driver.Value, error) {
	if l == nil {
		l = LikeSet{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *LikeSet) Scan(value interface{}) error {
	if value == nil {
		*l = LikeSet{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported likes column type %T", value)
	}
	if len(data) == 0 {
		*l = LikeSet{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Contains reports whether userID is a member of the set.
func (l LikeSet) Contains(userID string) bool {
	for _, id := range l {
		if id == userID {
			return true
		}
	}
	return false
}

// Toggle returns a copy of the set with userID's membership flipped.
func (l LikeSet) Toggle(userID string) LikeSet {
	out := make(LikeSet, 0, len(l)+1)
	found := false
	for _, id := range l {
		if id == userID {
			found = true
			continue
		}
		out = append(out, id)
	}
	if !found {
		out = append(out, userID)
	}
	return out
}

// Creation records one successful feature invocation. Rows are append-only:
// after insert, only the Likes set changes (via ToggleLike).
type Creation struct {
	ID        uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID    `json:"user_id" gorm:"type:char(36);not null;index"`
	Prompt    string       `json:"prompt" gorm:"type:text;not null"`
	Content   string       `json:"content" gorm:"type:longtext;not null"`
	Type      CreationType `json:"type" gorm:"type:varchar(20);not null;index"`
	Publish   bool         `json:"publish" gorm:"not null;default:false;index"`
	Likes     LikeSet      `json:"likes" gorm:"type:json"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Creation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Likes == nil {
		c.Likes = LikeSet{}
	}
	return nil
}
