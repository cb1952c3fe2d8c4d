package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dealsense/dealsense/pkg/marketplace"
	"github.com/dealsense/dealsense/pkg/metrics"
	"github.com/dealsense/dealsense/pkg/model"
)

type SuggestionSource interface {
	ListAcceptedUnposted(ctx context.Context) ([]model.DealSuggestion, error)
	MarkPosted(ctx context.Context, suggestionID uint) error
}

type DealCreator interface {
	VendorDetails(ctx context.Context, vendorID string) (*marketplace.VendorDetails, error)
	CreateDeal(ctx context.Context, deal marketplace.CreateDealRequest) (*marketplace.CreateDealResponse, error)
}

// PublishReport summarizes one publish cycle.
type PublishReport struct {
	Posted int
	Failed int
}

const (
	defaultDealWindow     = 7 * 24 * time.Hour
	defaultAvailableDeals = "10"
)

// Publisher republishes vendor-accepted suggestions as live marketplace
// deals. A suggestion is marked posted only after a 2xx from the deal
// endpoint; if the publish succeeds but the status update fails, the next
// cycle may create a duplicate deal. That window is accepted, not solved.
type Publisher struct {
	suggestions SuggestionSource
	api         DealCreator
	logger      *zap.Logger
	interval    time.Duration
	backoff     time.Duration
	now         func() time.Time
}

func NewPublisher(suggestions SuggestionSource, api DealCreator, logger *zap.Logger, interval, backoff time.Duration) *Publisher {
	return &Publisher{
		suggestions: suggestions,
		api:         api,
		logger:      logger,
		interval:    interval,
		backoff:     backoff,
		now:         time.Now,
	}
}

func (p *Publisher) Run(ctx context.Context) error {
	return runLoop(ctx, "deal-publisher", p.interval, p.backoff, p.logger, func(ctx context.Context) error {
		_, err := p.PublishAccepted(ctx)
		return err
	})
}

// PublishAccepted publishes every accepted, not-yet-posted suggestion
// independently; a failed publish is retried next cycle.
func (p *Publisher) PublishAccepted(ctx context.Context) (PublishReport, error) {
	var report PublishReport

	candidates, err := p.suggestions.ListAcceptedUnposted(ctx)
	if err != nil {
		return report, fmt.Errorf("list accepted suggestions: %w", err)
	}
	if len(candidates) == 0 {
		p.logger.Info("no accepted suggestions to publish")
		return report, nil
	}

	for i := range candidates {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if p.publish(ctx, &candidates[i]) {
			report.Posted++
			metrics.DealsPosted.WithLabelValues("posted").Inc()
		} else {
			report.Failed++
			metrics.DealsPosted.WithLabelValues("failed").Inc()
		}
	}

	p.logger.Info("publish cycle complete",
		zap.Int("posted", report.Posted),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (p *Publisher) publish(ctx context.Context, suggestion *model.DealSuggestion) bool {
	deal, err := p.buildDeal(ctx, suggestion)
	if err != nil {
		p.logger.Warn("failed to build deal payload",
			zap.Uint("suggestion_id", suggestion.ID),
			zap.String("vendor_id", suggestion.VendorID),
			zap.Error(err),
		)
		return false
	}

	created, err := p.api.CreateDeal(ctx, *deal)
	if err != nil {
		p.logger.Warn("failed to create deal, will retry next cycle",
			zap.Uint("suggestion_id", suggestion.ID),
			zap.String("vendor_id", suggestion.VendorID),
			zap.Error(err),
		)
		return false
	}

	p.logger.Info("deal created",
		zap.Uint("suggestion_id", suggestion.ID),
		zap.String("deal_uuid", created.Data.DealUUID),
	)

	if err := p.suggestions.MarkPosted(ctx, suggestion.ID); err != nil {
		p.logger.Error("deal created but status update failed, duplicate possible next cycle",
			zap.Uint("suggestion_id", suggestion.ID),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (p *Publisher) buildDeal(ctx context.Context, suggestion *model.DealSuggestion) (*marketplace.CreateDealRequest, error) {
	vendor, err := p.api.VendorDetails(ctx, suggestion.VendorID)
	if err != nil {
		return nil, fmt.Errorf("fetch vendor details: %w", err)
	}
	if len(vendor.Addresses) == 0 {
		return nil, fmt.Errorf("vendor %s has no addresses", suggestion.VendorID)
	}
	addr := vendor.Addresses[0]

	if suggestion.Event == nil {
		return nil, fmt.Errorf("suggestion %d has no event loaded", suggestion.ID)
	}
	event := suggestion.Event

	images := make([]marketplace.ImageRef, 0, len(suggestion.Images))
	for _, url := range suggestion.Images {
		images = append(images, marketplace.ImageRef{Thumbnail: url, Compressed: url})
	}

	start := p.now()
	end := start.Add(defaultDealWindow)
	if endDate, ok := event.EventDetailsText["end_date"].(string); ok && endDate != "" {
		if parsed, err := time.Parse("2006-01-02", endDate); err == nil && parsed.After(start) {
			end = parsed
		}
	}

	title, _ := event.EventDetailsText["title"].(string)
	if title == "" {
		title = "Deal on " + suggestion.SuggestedProductSKU
	}

	category := marketplaceCategory(event.EventDetailsText)

	return &marketplace.CreateDealRequest{
		DealTitle:        title,
		DealDescription:  suggestion.DealDetailsSuggestionText,
		SelectService:    category,
		UploadedImages:   images,
		StartDate:        start.Format("2006-01-02"),
		EndDate:          end.Format("2006-01-02"),
		StartTime:        start.Format("15:04:05"),
		EndTime:          "23:59:59",
		StartNow:         "true",
		ActualPrice:      fmt.Sprintf("%.2f", suggestion.OriginalPrice),
		DealPrice:        fmt.Sprintf("%.2f", suggestion.SuggestedPrice),
		AvailableDeals:   defaultAvailableDeals,
		LocationHouseNo:  addr.HouseNoBuildingName,
		LocationRoadName: addr.RoadNameAreaColony,
		LocationCountry:  addr.Country,
		LocationState:    addr.State,
		LocationCity:     addr.City,
		LocationPincode:  addr.Pincode,
		VendorKYC:        suggestion.VendorID,
		Latitude:         event.EventLocationLatitude,
		Longitude:        event.EventLocationLongitude,
	}, nil
}

func marketplaceCategory(details model.JSONB) string {
	if category, ok := details["category"].(string); ok && category != "" {
		return category
	}
	return "Others"
}
