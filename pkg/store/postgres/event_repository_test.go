package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsense/dealsense/pkg/marketplace"
)

func testActivity() *marketplace.Activity {
	return &marketplace.Activity{
		ActivityID:    "act-1",
		ActivityTitle: "Street Fair",
		Latitude:      "27.5747",
		Longitude:     "77.6525",
		EndDate:       "2026-09-15",
		ActivityCategory: &marketplace.ActivityCategory{
			ActvCategory: "Food & Dining",
		},
	}
}

func TestEventRepository_RecordCreates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "events" WHERE activity_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	outcome, err := repo.Record(context.Background(), "vendor-1", testActivity())
	require.NoError(t, err)
	assert.Equal(t, RecordCreated, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_RecordSkipsDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	existing := sqlmock.NewRows([]string{"id", "activity_id", "vendor_id"}).
		AddRow(1, "act-1", "vendor-1")
	mock.ExpectQuery(`SELECT \* FROM "events" WHERE activity_id = \$1`).
		WillReturnRows(existing)

	outcome, err := repo.Record(context.Background(), "vendor-1", testActivity())
	require.NoError(t, err)
	assert.Equal(t, RecordSkipped, outcome)
	// No insert was issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_RecordRejectsBadCoordinates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "events" WHERE activity_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	activity := testActivity()
	activity.Latitude = "not-a-number"

	outcome, err := repo.Record(context.Background(), "vendor-1", activity)
	require.Error(t, err)
	assert.Equal(t, RecordFailed, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListUnprocessed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "activity_id", "vendor_id", "processed_for_suggestion", "created_at"}).
		AddRow(1, "act-1", "vendor-1", false, now.Add(-time.Hour)).
		AddRow(2, "act-2", "vendor-2", false, now)

	mock.ExpectQuery(`SELECT \* FROM "events" WHERE processed_for_suggestion = \$1 ORDER BY created_at ASC`).
		WithArgs(false).
		WillReturnRows(rows)

	events, err := repo.ListUnprocessed(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "act-1", events[0].ActivityID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_MarkProcessed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectExec(`UPDATE "events" SET "processed_for_suggestion"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs(true, sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkProcessed(context.Background(), 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
