package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsense/dealsense/pkg/model"
)

func TestSuggestionRepository_ListAcceptedUnposted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSuggestionRepository(db)

	suggestions := sqlmock.NewRows([]string{"id", "vendor_id", "event_id", "vendor_feedback", "status"}).
		AddRow(7, "vendor-1", 42, "accepted", "generated")
	mock.ExpectQuery(`SELECT \* FROM "deal_suggestions" WHERE vendor_feedback = \$1 AND status <> \$2 ORDER BY created_at ASC`).
		WithArgs("accepted", "posted").
		WillReturnRows(suggestions)

	events := sqlmock.NewRows([]string{"id", "activity_id", "vendor_id"}).
		AddRow(42, "act-1", "vendor-1")
	mock.ExpectQuery(`SELECT \* FROM "events" WHERE "events"\."id" = \$1`).
		WithArgs(42).
		WillReturnRows(events)

	got, err := repo.ListAcceptedUnposted(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(7), got[0].ID)
	require.NotNil(t, got[0].Event)
	assert.Equal(t, "act-1", got[0].Event.ActivityID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepository_MarkPostedIsConditional(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSuggestionRepository(db)

	mock.ExpectExec(`UPDATE "deal_suggestions" SET "status"=\$1,"updated_at"=\$2 WHERE id = \$3 AND status <> \$4`).
		WithArgs("posted", sqlmock.AnyArg(), 7, "posted").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkPosted(context.Background(), 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepository_SetFeedback(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSuggestionRepository(db)

	mock.ExpectExec(`UPDATE "deal_suggestions" SET "updated_at"=\$1,"vendor_feedback"=\$2 WHERE id = \$3`).
		WithArgs(sqlmock.AnyArg(), "accepted", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetFeedback(context.Background(), 7, model.FeedbackAccepted)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepository_ListWithFeedbackFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSuggestionRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "deal_suggestions" WHERE vendor_feedback = \$1`).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{"id", "vendor_id", "vendor_feedback", "status"}).
		AddRow(3, "vendor-1", "pending", "generated")
	mock.ExpectQuery(`SELECT \* FROM "deal_suggestions" WHERE vendor_feedback = \$1 ORDER BY created_at DESC LIMIT`).
		WillReturnRows(rows)

	pending := model.FeedbackPending
	got, total, err := repo.List(context.Background(), &pending, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, model.FeedbackPending, got[0].VendorFeedback)
	assert.NoError(t, mock.ExpectationsWereMet())
}
