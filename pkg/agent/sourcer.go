package agent

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dealsense/dealsense/pkg/geo"
	"github.com/dealsense/dealsense/pkg/marketplace"
	"github.com/dealsense/dealsense/pkg/metrics"
	"github.com/dealsense/dealsense/pkg/store/postgres"
	redisstore "github.com/dealsense/dealsense/pkg/store/redis"
)

// MarketplaceAPI is the slice of the marketplace client the sourcer reads.
type MarketplaceAPI interface {
	Vendors(ctx context.Context) ([]marketplace.VendorSummary, error)
	VendorDetails(ctx context.Context, vendorID string) (*marketplace.VendorDetails, error)
	Activities(ctx context.Context) ([]marketplace.Activity, error)
	ActivityDetails(ctx context.Context, activityID string) (*marketplace.Activity, error)
}

// MatchMode selects how the sourcer pairs a vendor with an activity.
type MatchMode string

const (
	// MatchNearest records the activity closest to the vendor.
	MatchNearest MatchMode = "nearest"
	// MatchExact records only an activity at the vendor's own coordinates,
	// refetched via the details endpoint before insert.
	MatchExact MatchMode = "exact"
)

type ActivityCache interface {
	Get(ctx context.Context) ([]marketplace.Activity, error)
	Set(ctx context.Context, activities []marketplace.Activity) error
}

type EventRecorder interface {
	Record(ctx context.Context, vendorID string, activity *marketplace.Activity) (postgres.RecordOutcome, error)
}

// SourceReport summarizes one sourcing cycle.
type SourceReport struct {
	Created int
	Skipped int
	Failed  int
}

// Sourcer matches vendor locations against the marketplace activity feed and
// records the nearest activity per vendor as an event.
type Sourcer struct {
	api      MarketplaceAPI
	cache    ActivityCache
	events   EventRecorder
	mode     MatchMode
	logger   *zap.Logger
	interval time.Duration
	backoff  time.Duration
}

func NewSourcer(api MarketplaceAPI, cache ActivityCache, events EventRecorder, mode MatchMode, logger *zap.Logger, interval, backoff time.Duration) *Sourcer {
	if mode != MatchExact {
		mode = MatchNearest
	}
	return &Sourcer{
		api:      api,
		cache:    cache,
		events:   events,
		mode:     mode,
		logger:   logger,
		interval: interval,
		backoff:  backoff,
	}
}

func (s *Sourcer) Run(ctx context.Context) error {
	return runLoop(ctx, "event-sourcer", s.interval, s.backoff, s.logger, func(ctx context.Context) error {
		_, err := s.SourceOnce(ctx)
		return err
	})
}

// SourceOnce runs a single sourcing cycle. Per-vendor failures are isolated:
// one vendor with a broken address never stops the rest of the batch.
func (s *Sourcer) SourceOnce(ctx context.Context) (SourceReport, error) {
	var report SourceReport

	vendors, err := s.api.Vendors(ctx)
	if err != nil {
		return report, fmt.Errorf("list vendors: %w", err)
	}
	if len(vendors) == 0 {
		s.logger.Info("no vendors returned by marketplace")
		return report, nil
	}

	activities, err := s.activities(ctx)
	if err != nil {
		return report, fmt.Errorf("list activities: %w", err)
	}
	if len(activities) == 0 {
		s.logger.Info("no activities returned by marketplace")
		return report, nil
	}

	candidates := make([]geo.Candidate, len(activities))
	byID := make(map[string]*marketplace.Activity, len(activities))
	for i := range activities {
		candidates[i] = geo.Candidate{
			ID:        activities[i].ActivityID,
			Title:     activities[i].ActivityTitle,
			Latitude:  activities[i].Latitude,
			Longitude: activities[i].Longitude,
		}
		byID[activities[i].ActivityID] = &activities[i]
	}

	for _, vendor := range vendors {
		outcome := s.sourceVendor(ctx, vendor.VendorID, candidates, byID)
		metrics.EventsRecorded.WithLabelValues(string(outcome)).Inc()
		switch outcome {
		case postgres.RecordCreated:
			report.Created++
		case postgres.RecordSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}

	s.logger.Info("sourcing cycle complete",
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *Sourcer) sourceVendor(ctx context.Context, vendorID string, candidates []geo.Candidate, byID map[string]*marketplace.Activity) postgres.RecordOutcome {
	details, err := s.api.VendorDetails(ctx, vendorID)
	if err != nil {
		s.logger.Warn("failed to fetch vendor details", zap.String("vendor_id", vendorID), zap.Error(err))
		return postgres.RecordFailed
	}
	if len(details.Addresses) == 0 {
		s.logger.Warn("vendor has no addresses", zap.String("vendor_id", vendorID))
		return postgres.RecordFailed
	}

	addr := details.Addresses[0]
	lat, latErr := strconv.ParseFloat(addr.Latitude, 64)
	lon, lonErr := strconv.ParseFloat(addr.Longitude, 64)
	if latErr != nil || lonErr != nil {
		s.logger.Warn("vendor address has unparsable coordinates",
			zap.String("vendor_id", vendorID),
			zap.String("latitude", addr.Latitude),
			zap.String("longitude", addr.Longitude),
		)
		return postgres.RecordFailed
	}

	var match geo.Candidate
	var activity *marketplace.Activity

	if s.mode == MatchExact {
		exact, ok := geo.ExactMatch(lat, lon, candidates)
		if !ok {
			// Most vendors have no activity at their own coordinates;
			// that is an empty result, not an error.
			s.logger.Debug("no activity at vendor location", zap.String("vendor_id", vendorID))
			return postgres.RecordSkipped
		}
		full, err := s.api.ActivityDetails(ctx, exact.ID)
		if err != nil {
			s.logger.Warn("failed to fetch activity details",
				zap.String("vendor_id", vendorID),
				zap.String("activity_id", exact.ID),
				zap.Error(err),
			)
			return postgres.RecordFailed
		}
		match, activity = exact, full
	} else {
		nearest, ok := geo.Nearest(lat, lon, candidates, s.logger)
		if !ok {
			s.logger.Warn("no usable activity near vendor", zap.String("vendor_id", vendorID))
			return postgres.RecordFailed
		}
		match, activity = nearest, byID[nearest.ID]
	}

	outcome, err := s.events.Record(ctx, vendorID, activity)
	if err != nil {
		s.logger.Warn("failed to record event",
			zap.String("vendor_id", vendorID),
			zap.String("activity_id", match.ID),
			zap.Error(err),
		)
		return outcome
	}

	if outcome == postgres.RecordCreated {
		s.logger.Info("recorded event",
			zap.String("vendor_id", vendorID),
			zap.String("activity_id", match.ID),
			zap.String("activity_title", match.Title),
		)
	}
	return outcome
}

// activities prefers the short-TTL cache; any cache failure falls through to
// the live API.
func (s *Sourcer) activities(ctx context.Context) ([]marketplace.Activity, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redisstore.ErrCacheMiss) {
			s.logger.Debug("activity cache read failed", zap.Error(err))
		}
	}

	activities, err := s.api.Activities(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(activities) > 0 {
		if err := s.cache.Set(ctx, activities); err != nil {
			s.logger.Debug("activity cache write failed", zap.Error(err))
		}
	}
	return activities, nil
}
