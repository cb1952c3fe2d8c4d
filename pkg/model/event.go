package model

import (
	"time"

	"github.com/google/uuid"
)

// TriggerLocalEvent is the trigger point recorded for events sourced from
// the marketplace activity feed.
const TriggerLocalEvent = "local_event"

// Event is a detected vendor-activity proximity signal. Exactly one event
// exists per marketplace activity; ProcessedForSuggestion flips to true once
// a suggestion run reached a successful or terminal outcome and never reverts.
type Event struct {
	ID                     uint      `gorm:"primaryKey"`
	ActivityID             string    `gorm:"not null;uniqueIndex"`
	VendorID               string    `gorm:"not null;index"`
	LocationUUID           uuid.UUID `gorm:"type:uuid;not null"`
	EventTriggerPoint      string    `gorm:"type:varchar(50);not null"`
	EventDetailsText       JSONB     `gorm:"type:jsonb;not null"`
	EventLocationLatitude  float64   `gorm:"not null"`
	EventLocationLongitude float64   `gorm:"not null"`
	EventTimestamp         time.Time `gorm:"not null"`
	ProcessedForSuggestion bool      `gorm:"not null;default:false;index"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (Event) TableName() string {
	return "events"
}
