package model

import (
	"time"

	"github.com/lib/pq"
)

type DiscountType string

const (
	DiscountFixedAmount DiscountType = "fixed_amount"
	DiscountPercentage  DiscountType = "percentage"
)

type VendorFeedback string

const (
	FeedbackPending  VendorFeedback = "pending"
	FeedbackAccepted VendorFeedback = "accepted"
	FeedbackRejected VendorFeedback = "rejected"
)

type SuggestionStatus string

const (
	SuggestionGenerated SuggestionStatus = "generated"
	SuggestionPosted    SuggestionStatus = "posted"
)

// DealSuggestion is an AI-generated proposed deal tied to one inventory SKU
// and one event. VendorFeedback is mutated by the vendor approval surface;
// Status moves generated → posted exactly once, by the publisher, and only
// when the vendor accepted.
type DealSuggestion struct {
	ID                        uint             `gorm:"primaryKey"`
	VendorID                  string           `gorm:"not null;index"`
	EventID                   uint             `gorm:"not null;index"`
	Event                     *Event           `gorm:"foreignKey:EventID"`
	SuggestedProductSKU       string           `gorm:"column:suggested_product_sku;not null"`
	DealDetailsPrompt         string           `gorm:"type:text"`
	DealDetailsSuggestionText string           `gorm:"type:text;not null"`
	SuggestedDiscountType     DiscountType     `gorm:"type:varchar(20);not null"`
	SuggestedDiscountValue    float64          `gorm:"not null"`
	OriginalPrice             float64          `gorm:"not null"`
	SuggestedPrice            float64          `gorm:"not null"`
	AIModelName               string           `gorm:"column:ai_model_name"`
	AIResponsePayload         JSONB            `gorm:"column:ai_response_payload;type:jsonb"`
	Images                    pq.StringArray   `gorm:"type:text[]"`
	VendorFeedback            VendorFeedback   `gorm:"type:varchar(20);not null;default:'pending';index"`
	Status                    SuggestionStatus `gorm:"type:varchar(20);not null;default:'generated';index"`
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

func (DealSuggestion) TableName() string {
	return "deal_suggestions"
}
