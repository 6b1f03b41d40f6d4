package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User mirrors an identity-provider account. ExternalID is the provider's
// subject claim.
type User struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID           string    `gorm:"uniqueIndex;not null;column:external_id" json:"-"`
	Email                string    `gorm:"index;not null;column:email" json:"email"`
	Name                 string    `gorm:"not null;column:name" json:"name"`
	Image                *string   `gorm:"column:image" json:"image,omitempty"`
	IsAdmin              bool      `gorm:"not null;default:false;column:is_admin" json:"isAdmin"`
	Plan                 Plan      `gorm:"type:varchar(16);not null;default:'free';column:plan" json:"plan"`
	GenerationCount      int64     `gorm:"not null;default:0;column:generation_count" json:"generationCount"`
	NewsletterSubscribed bool      `gorm:"not null;default:false;column:newsletter_subscribed" json:"newsletterSubscribed"`

	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null;index" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Plan == "" {
		u.Plan = PlanFree
	}
	return nil
}
