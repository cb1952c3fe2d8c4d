package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dealsense/dealsense/pkg/ai"
	"github.com/dealsense/dealsense/pkg/metrics"
	"github.com/dealsense/dealsense/pkg/model"
	"github.com/dealsense/dealsense/pkg/suggest"
)

type EventSource interface {
	ListUnprocessed(ctx context.Context) ([]model.Event, error)
	MarkProcessed(ctx context.Context, eventID uint) error
}

type InventorySource interface {
	ListByVendor(ctx context.Context, vendorID string) ([]model.InventoryItem, error)
}

// Suggester turns an event plus inventory context into a persisted
// suggestion. Implementations: in-process generation, or a call to the
// suggestion API sibling service.
type Suggester interface {
	Suggest(ctx context.Context, event *model.Event, inventory []model.InventoryItem) error
}

// ProcessReport summarizes one processing cycle.
type ProcessReport struct {
	Processed int
	Failed    int
}

// Processor drives unprocessed events through suggestion generation with
// at-least-once semantics: an event is marked processed only after a
// successful or terminal outcome, so transient failures are retried on the
// next cycle.
type Processor struct {
	events    EventSource
	inventory InventorySource
	suggester Suggester
	logger    *zap.Logger
	interval  time.Duration
	backoff   time.Duration
}

func NewProcessor(events EventSource, inventory InventorySource, suggester Suggester, logger *zap.Logger, interval, backoff time.Duration) *Processor {
	return &Processor{
		events:    events,
		inventory: inventory,
		suggester: suggester,
		logger:    logger,
		interval:  interval,
		backoff:   backoff,
	}
}

func (p *Processor) Run(ctx context.Context) error {
	return runLoop(ctx, "event-processor", p.interval, p.backoff, p.logger, func(ctx context.Context) error {
		_, err := p.ProcessPending(ctx)
		return err
	})
}

// ProcessPending handles every unprocessed event independently; one failing
// event never aborts the batch.
func (p *Processor) ProcessPending(ctx context.Context) (ProcessReport, error) {
	var report ProcessReport

	events, err := p.events.ListUnprocessed(ctx)
	if err != nil {
		return report, fmt.Errorf("list unprocessed events: %w", err)
	}
	if len(events) == 0 {
		p.logger.Info("no unprocessed events found")
		return report, nil
	}

	p.logger.Info("processing events", zap.Int("count", len(events)))

	for i := range events {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if p.processEvent(ctx, &events[i]) {
			report.Processed++
		} else {
			report.Failed++
		}
	}

	p.logger.Info("processing cycle complete",
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (p *Processor) processEvent(ctx context.Context, event *model.Event) bool {
	inventory, err := p.inventory.ListByVendor(ctx, event.VendorID)
	if err != nil {
		metrics.SuggestionsGenerated.WithLabelValues("transient").Inc()
		p.logger.Warn("failed to fetch inventory, will retry next cycle",
			zap.Uint("event_id", event.ID),
			zap.String("vendor_id", event.VendorID),
			zap.Error(err),
		)
		return false
	}

	if err := p.suggester.Suggest(ctx, event, inventory); err != nil {
		if isTerminal(err) {
			// Re-sending the identical prompt reproduces the same failure,
			// so a terminal outcome still marks the event processed.
			metrics.SuggestionsGenerated.WithLabelValues("terminal").Inc()
			p.logger.Warn("suggestion failed terminally, giving up on event",
				zap.Uint("event_id", event.ID),
				zap.String("vendor_id", event.VendorID),
				zap.Error(err),
			)
			p.markProcessed(ctx, event.ID)
		} else {
			metrics.SuggestionsGenerated.WithLabelValues("transient").Inc()
			p.logger.Warn("suggestion failed, will retry next cycle",
				zap.Uint("event_id", event.ID),
				zap.String("vendor_id", event.VendorID),
				zap.Error(err),
			)
		}
		return false
	}

	metrics.SuggestionsGenerated.WithLabelValues("generated").Inc()
	p.markProcessed(ctx, event.ID)
	p.logger.Info("event processed", zap.Uint("event_id", event.ID))
	return true
}

func (p *Processor) markProcessed(ctx context.Context, eventID uint) {
	if err := p.events.MarkProcessed(ctx, eventID); err != nil {
		p.logger.Warn("failed to mark event processed", zap.Uint("event_id", eventID), zap.Error(err))
	}
}

// isTerminal reports whether retrying the event next cycle could possibly
// succeed. Validation defects, blocked prompts and suggestion-api rejections
// cannot; everything else (DB, network, AI transport) is assumed transient.
func isTerminal(err error) bool {
	var validationErr *suggest.ValidationError
	var blockedErr *ai.BlockedError
	var rejectedErr *RejectedError
	return errors.As(err, &validationErr) || errors.As(err, &blockedErr) || errors.As(err, &rejectedErr)
}
