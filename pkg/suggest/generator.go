// Package suggest turns stored events plus inventory context into
// AI-generated deal suggestions, validating the model's output against
// inventory ground truth.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/dealsense/dealsense/pkg/model"
)

// ValidationError marks a terminal, non-retryable defect in the model's
// output: retrying the identical prompt reproduces the same failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("suggest: invalid %s: %s", e.Field, e.Reason)
}

// TextGenerator is the slice of the AI client the generator needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Model() string
}

// priceTolerance is how far the model's own suggested_price may drift from
// the deterministically computed one before a warning is logged. The computed
// value always wins either way.
const priceTolerance = 0.01

var codeFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

type aiSuggestion struct {
	SuggestedProductSKU       string  `json:"suggested_product_sku"`
	DealDetailsSuggestionText string  `json:"deal_details_suggestion_text"`
	SuggestedDiscountType     string  `json:"suggested_discount_type"`
	SuggestedDiscountValue    float64 `json:"suggested_discount_value"`
	OriginalPrice             float64 `json:"original_price"`
	SuggestedPrice            float64 `json:"suggested_price"`
}

type Generator struct {
	ai     TextGenerator
	logger *zap.Logger
}

func NewGenerator(ai TextGenerator, logger *zap.Logger) *Generator {
	return &Generator{ai: ai, logger: logger}
}

// Generate builds the prompt, invokes the model and returns a fully populated
// suggestion. The result is not persisted here. original_price always comes
// from inventory and suggested_price is always recomputed from the discount;
// the model's arithmetic is never trusted.
func (g *Generator) Generate(ctx context.Context, event *model.Event, inventory []model.InventoryItem) (*model.DealSuggestion, error) {
	if len(inventory) == 0 {
		return nil, &ValidationError{Field: "inventory", Reason: "vendor has no inventory items"}
	}

	prompt, err := buildPrompt(event, inventory)
	if err != nil {
		return nil, fmt.Errorf("suggest: build prompt: %w", err)
	}

	raw, err := g.ai.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if m := codeFence.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}

	var parsed aiSuggestion
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &ValidationError{Field: "response", Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}

	var item *model.InventoryItem
	for i := range inventory {
		if inventory[i].SKU == parsed.SuggestedProductSKU {
			item = &inventory[i]
			break
		}
	}
	if parsed.SuggestedProductSKU == "" || item == nil {
		return nil, &ValidationError{
			Field:  "suggested_product_sku",
			Reason: fmt.Sprintf("sku %q is not in the vendor's inventory", parsed.SuggestedProductSKU),
		}
	}

	discountType := model.DiscountType(parsed.SuggestedDiscountType)
	var computed float64
	switch discountType {
	case model.DiscountFixedAmount:
		computed = item.Price - parsed.SuggestedDiscountValue
	case model.DiscountPercentage:
		computed = item.Price * (1 - parsed.SuggestedDiscountValue/100)
	default:
		return nil, &ValidationError{
			Field:  "suggested_discount_type",
			Reason: fmt.Sprintf("unknown discount type %q", parsed.SuggestedDiscountType),
		}
	}
	computed = round2(computed)

	if math.Abs(parsed.SuggestedPrice-computed) > priceTolerance {
		g.logger.Warn("model suggested price differs from computed price, using computed",
			zap.String("sku", item.SKU),
			zap.Float64("model_price", parsed.SuggestedPrice),
			zap.Float64("computed_price", computed),
		)
	}

	var payload model.JSONB
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		payload = model.JSONB{"raw": raw}
	}

	return &model.DealSuggestion{
		VendorID:                  event.VendorID,
		EventID:                   event.ID,
		SuggestedProductSKU:       item.SKU,
		DealDetailsPrompt:         prompt,
		DealDetailsSuggestionText: parsed.DealDetailsSuggestionText,
		SuggestedDiscountType:     discountType,
		SuggestedDiscountValue:    parsed.SuggestedDiscountValue,
		OriginalPrice:             item.Price,
		SuggestedPrice:            computed,
		AIModelName:               g.ai.Model(),
		AIResponsePayload:         payload,
		Images:                    ActivityImages(event.EventDetailsText),
		VendorFeedback:            model.FeedbackPending,
		Status:                    model.SuggestionGenerated,
	}, nil
}

func buildPrompt(event *model.Event, inventory []model.InventoryItem) (string, error) {
	eventJSON, err := json.MarshalIndent(eventPromptContext(event), "", "  ")
	if err != nil {
		return "", err
	}

	items := make([]map[string]interface{}, 0, len(inventory))
	for _, it := range inventory {
		items = append(items, map[string]interface{}{
			"sku":              it.SKU,
			"product_name":     it.ProductName,
			"description":      it.Description,
			"price":            it.Price,
			"quantity_on_hand": it.QuantityOnHand,
			"category":         it.Category,
			"supplier":         it.Supplier,
		})
	}
	inventoryJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are an expert marketing assistant. Analyze event details and inventory to suggest ONE compelling product deal.
Event: %s
Inventory: %s

Select ONE product. Discount should be 10-30%% or a meaningful fixed amount.
'deal_details_suggestion_text' should be catchy, concise, highlight benefit/savings, and relevant to the event.
'suggested_product_sku' must be from inventory. Use its 'price' as 'original_price'.
Calculate 'suggested_price'. 'suggested_discount_type' is 'fixed_amount' or 'percentage'.
If 'percentage', 'suggested_discount_value' is the percent number (e.g., 20 for 20%%).
If 'fixed_amount', 'suggested_discount_value' is currency amount (e.g., 80.00).

Respond ONLY with a single JSON object:
{
  "suggested_product_sku": "string",
  "deal_details_suggestion_text": "string",
  "suggested_discount_type": "string",
  "suggested_discount_value": "float",
  "original_price": "float",
  "suggested_price": "float"
}`, eventJSON, inventoryJSON), nil
}

func eventPromptContext(event *model.Event) map[string]interface{} {
	return map[string]interface{}{
		"vendor_id":                event.VendorID,
		"event_trigger_point":      event.EventTriggerPoint,
		"event_details":            event.EventDetailsText,
		"event_location_latitude":  event.EventLocationLatitude,
		"event_location_longitude": event.EventLocationLongitude,
		"event_timestamp":          event.EventTimestamp.Format(time.RFC3339),
	}
}

// ActivityImages pulls the source activity's image URLs out of the stored
// details payload so the publisher can reuse them on the deal.
func ActivityImages(details model.JSONB) []string {
	snapshot, ok := details["activity_details_json"].(map[string]interface{})
	if !ok {
		return nil
	}
	rawImages, ok := snapshot["uploaded_images"].([]interface{})
	if !ok {
		return nil
	}
	images := make([]string, 0, len(rawImages))
	for _, img := range rawImages {
		if url, ok := img.(string); ok {
			images = append(images, url)
		}
	}
	return images
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
