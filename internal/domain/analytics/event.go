package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionGenerateColoring = "generate_coloring"
	ActionGenerateTracing  = "generate_tracing"
	ActionDownloadColoring = "download_coloring"
	ActionDownloadTracing  = "download_tracing"
	ActionPrint            = "print"
)

// Event is one tracked activity. Server-side generation events and client
// beacons share the table; ClientKey identifies anonymous callers.
type Event struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index;column:user_id" json:"userId,omitempty"`
	ClientKey  string         `gorm:"index;column:client_key" json:"-"`
	Action     string         `gorm:"index;not null;column:action" json:"action"`
	Content    string         `gorm:"column:content" json:"content,omitempty"`
	Properties datatypes.JSON `gorm:"column:properties" json:"properties,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"createdAt"`
}

func (Event) TableName() string { return "analytics_event" }

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
