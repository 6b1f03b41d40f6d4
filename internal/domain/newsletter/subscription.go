package newsletter

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription is one address on the parenting newsletter list. An address
// that unsubscribed keeps its row with UnsubscribedAt set.
type Subscription struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	UserID         *uuid.UUID `gorm:"type:uuid;index;column:user_id" json:"userId,omitempty"`
	SubscribedAt   time.Time  `gorm:"not null;column:subscribed_at" json:"subscribedAt"`
	UnsubscribedAt *time.Time `gorm:"column:unsubscribed_at" json:"unsubscribedAt,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Subscription) TableName() string { return "newsletter_subscription" }

func (s *Subscription) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Subscription) Active() bool { return s != nil && s.UnsubscribedAt == nil }
