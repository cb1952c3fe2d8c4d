package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dealsense/dealsense/pkg/model"
)

type SuggestionRepository struct {
	db *gorm.DB
}

func NewSuggestionRepository(db *gorm.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

func (r *SuggestionRepository) Create(ctx context.Context, suggestion *model.DealSuggestion) error {
	return r.db.WithContext(ctx).Create(suggestion).Error
}

// ListAcceptedUnposted returns publish candidates: vendor-accepted
// suggestions whose status has not reached posted.
func (r *SuggestionRepository) ListAcceptedUnposted(ctx context.Context) ([]model.DealSuggestion, error) {
	var suggestions []model.DealSuggestion
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("vendor_feedback = ? AND status <> ?", model.FeedbackAccepted, model.SuggestionPosted).
		Order("created_at ASC").
		Find(&suggestions).Error
	return suggestions, err
}

// MarkPosted is conditional on the current status so a raced second writer
// loses on the flag rather than flipping it twice.
func (r *SuggestionRepository) MarkPosted(ctx context.Context, suggestionID uint) error {
	updates := map[string]interface{}{
		"status":     model.SuggestionPosted,
		"updated_at": time.Now(),
	}
	return r.db.WithContext(ctx).
		Model(&model.DealSuggestion{}).
		Where("id = ? AND status <> ?", suggestionID, model.SuggestionPosted).
		Updates(updates).Error
}

func (r *SuggestionRepository) List(ctx context.Context, feedback *model.VendorFeedback, limit, offset int) ([]model.DealSuggestion, int64, error) {
	var suggestions []model.DealSuggestion
	var total int64

	query := r.db.WithContext(ctx).Model(&model.DealSuggestion{})
	if feedback != nil {
		query = query.Where("vendor_feedback = ?", *feedback)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&suggestions).Error

	return suggestions, total, err
}

// SetFeedback records the vendor's decision. Feedback originates outside the
// pipeline; this is the surface the approval UI calls.
func (r *SuggestionRepository) SetFeedback(ctx context.Context, suggestionID uint, feedback model.VendorFeedback) error {
	updates := map[string]interface{}{
		"vendor_feedback": feedback,
		"updated_at":      time.Now(),
	}
	return r.db.WithContext(ctx).
		Model(&model.DealSuggestion{}).
		Where("id = ?", suggestionID).
		Updates(updates).Error
}
