package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dealsense/dealsense/pkg/ai"
	"github.com/dealsense/dealsense/pkg/model"
	"github.com/dealsense/dealsense/pkg/suggest"
)

// SuggestionStore is the slice of the suggestion repository the API needs.
type SuggestionStore interface {
	Create(ctx context.Context, suggestion *model.DealSuggestion) error
	List(ctx context.Context, feedback *model.VendorFeedback, limit, offset int) ([]model.DealSuggestion, int64, error)
	SetFeedback(ctx context.Context, suggestionID uint, feedback model.VendorFeedback) error
}

type SuggestionHandler struct {
	generator   *suggest.Generator
	suggestions SuggestionStore
	logger      *zap.Logger
}

func NewSuggestionHandler(generator *suggest.Generator, suggestions SuggestionStore, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{generator: generator, suggestions: suggestions, logger: logger}
}

type suggestionResponse struct {
	ID                        uint        `json:"id"`
	VendorID                  string      `json:"vendor_id"`
	EventID                   uint        `json:"event_id"`
	SuggestedProductSKU       string      `json:"suggested_product_sku"`
	DealDetailsSuggestionText string      `json:"deal_details_suggestion_text"`
	SuggestedDiscountType     string      `json:"suggested_discount_type"`
	SuggestedDiscountValue    float64     `json:"suggested_discount_value"`
	OriginalPrice             float64     `json:"original_price"`
	SuggestedPrice            float64     `json:"suggested_price"`
	AIModelName               string      `json:"ai_model_name"`
	VendorFeedback            string      `json:"vendor_feedback"`
	Status                    string      `json:"status"`
	CreatedAt                 time.Time   `json:"created_at"`
	AIResponsePayload         model.JSONB `json:"ai_response_payload,omitempty"`
}

func toSuggestionResponse(s *model.DealSuggestion) suggestionResponse {
	return suggestionResponse{
		ID:                        s.ID,
		VendorID:                  s.VendorID,
		EventID:                   s.EventID,
		SuggestedProductSKU:       s.SuggestedProductSKU,
		DealDetailsSuggestionText: s.DealDetailsSuggestionText,
		SuggestedDiscountType:     string(s.SuggestedDiscountType),
		SuggestedDiscountValue:    s.SuggestedDiscountValue,
		OriginalPrice:             s.OriginalPrice,
		SuggestedPrice:            s.SuggestedPrice,
		AIModelName:               s.AIModelName,
		VendorFeedback:            string(s.VendorFeedback),
		Status:                    string(s.Status),
		CreatedAt:                 s.CreatedAt,
		AIResponsePayload:         s.AIResponsePayload,
	}
}

// Suggest generates a deal suggestion for the posted event and inventory
// snapshot, persists it and returns it.
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	if h.generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "suggestion generation is not configured"})
		return
	}

	var req suggest.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if req.EventData.VendorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_data.vendor_id is required"})
		return
	}

	suggestion, err := h.generator.Generate(c.Request.Context(), req.Event(), req.Inventory())
	if err != nil {
		var validationErr *suggest.ValidationError
		var blockedErr *ai.BlockedError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Error()})
		case errors.As(err, &blockedErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": blockedErr.Error()})
		default:
			h.logger.Error("suggestion generation failed", zap.String("vendor_id", req.EventData.VendorID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate suggestion"})
		}
		return
	}

	if err := h.suggestions.Create(c.Request.Context(), suggestion); err != nil {
		h.logger.Error("failed to persist suggestion", zap.String("vendor_id", suggestion.VendorID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store suggestion"})
		return
	}

	c.JSON(http.StatusOK, []suggestionResponse{toSuggestionResponse(suggestion)})
}

func (h *SuggestionHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var feedback *model.VendorFeedback
	if raw := c.Query("feedback"); raw != "" {
		parsed, ok := parseFeedback(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback filter"})
			return
		}
		feedback = &parsed
	}

	suggestions, total, err := h.suggestions.List(c.Request.Context(), feedback, limit, offset)
	if err != nil {
		h.logger.Error("failed to list suggestions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list suggestions"})
		return
	}

	responses := make([]suggestionResponse, 0, len(suggestions))
	for i := range suggestions {
		responses = append(responses, toSuggestionResponse(&suggestions[i]))
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": responses, "total": total})
}

type feedbackRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}

// SetFeedback records the vendor's decision on a suggestion. This is the
// external surface that makes suggestions eligible for publishing.
func (h *SuggestionHandler) SetFeedback(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	feedback, ok := parseFeedback(req.Feedback)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "feedback must be pending, accepted or rejected"})
		return
	}

	if err := h.suggestions.SetFeedback(c.Request.Context(), uint(id), feedback); err != nil {
		h.logger.Error("failed to set feedback", zap.Uint64("suggestion_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "feedback recorded"})
}

func parseFeedback(raw string) (model.VendorFeedback, bool) {
	switch model.VendorFeedback(raw) {
	case model.FeedbackPending, model.FeedbackAccepted, model.FeedbackRejected:
		return model.VendorFeedback(raw), true
	default:
		return "", false
	}
}
