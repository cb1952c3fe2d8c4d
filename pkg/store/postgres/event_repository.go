package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealsense/dealsense/pkg/marketplace"
	"github.com/dealsense/dealsense/pkg/model"
)

// RecordOutcome reports what a Record call did with an activity.
type RecordOutcome string

const (
	RecordCreated RecordOutcome = "created"
	RecordSkipped RecordOutcome = "skipped"
	RecordFailed  RecordOutcome = "failed"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Record writes a proximity match as an event row. It is idempotent on
// activity_id: an activity already recorded reports RecordSkipped without
// error. Unparsable activity coordinates report RecordFailed and nothing is
// written.
func (r *EventRepository) Record(ctx context.Context, vendorID string, activity *marketplace.Activity) (RecordOutcome, error) {
	var existing model.Event
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activity.ActivityID).
		First(&existing).Error
	if err == nil {
		return RecordSkipped, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return RecordFailed, fmt.Errorf("lookup event by activity_id: %w", err)
	}

	lat, latErr := strconv.ParseFloat(activity.Latitude, 64)
	lon, lonErr := strconv.ParseFloat(activity.Longitude, 64)
	if latErr != nil || lonErr != nil {
		return RecordFailed, fmt.Errorf("parse activity coordinates %q,%q", activity.Latitude, activity.Longitude)
	}

	details, err := eventDetails(activity)
	if err != nil {
		return RecordFailed, fmt.Errorf("serialize activity details: %w", err)
	}

	now := time.Now()
	event := model.Event{
		ActivityID:             activity.ActivityID,
		VendorID:               vendorID,
		LocationUUID:           uuid.New(),
		EventTriggerPoint:      model.TriggerLocalEvent,
		EventDetailsText:       details,
		EventLocationLatitude:  lat,
		EventLocationLongitude: lon,
		EventTimestamp:         now,
	}

	if err := r.db.WithContext(ctx).Create(&event).Error; err != nil {
		return RecordFailed, fmt.Errorf("insert event: %w", err)
	}
	return RecordCreated, nil
}

func (r *EventRepository) ListUnprocessed(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("processed_for_suggestion = ?", false).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}

// MarkProcessed flips the processed flag; it never reverts.
func (r *EventRepository) MarkProcessed(ctx context.Context, eventID uint) error {
	updates := map[string]interface{}{
		"processed_for_suggestion": true,
		"updated_at":               time.Now(),
	}
	return r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ?", eventID).
		Updates(updates).Error
}

// eventDetails combines the headline fields with the full source-activity
// snapshot, mirroring what downstream prompt building expects.
func eventDetails(activity *marketplace.Activity) (model.JSONB, error) {
	raw, err := json.Marshal(activity)
	if err != nil {
		return nil, err
	}
	var snapshot map[string]interface{}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}

	return model.JSONB{
		"title":                 activity.ActivityTitle,
		"location":              activity.Location,
		"start_date":            activity.StartDate,
		"end_date":              activity.EndDate,
		"category":              activity.Category(),
		"activity_details_json": snapshot,
	}, nil
}
