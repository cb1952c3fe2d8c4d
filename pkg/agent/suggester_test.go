package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsense/dealsense/pkg/model"
	"github.com/dealsense/dealsense/pkg/suggest"
)

func apiSuggesterEvent() *model.Event {
	return &model.Event{
		ID:                     42,
		VendorID:               "vendor-1",
		EventTriggerPoint:      model.TriggerLocalEvent,
		EventDetailsText:       model.JSONB{"title": "Street Fair"},
		EventLocationLatitude:  27.5727,
		EventLocationLongitude: 77.6506,
	}
}

func TestAPISuggesterSuccess(t *testing.T) {
	var got suggest.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/deals/suggest", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`[{"id": 1}]`))
	}))
	defer srv.Close()

	s := NewAPISuggester(srv.URL, 5*time.Second)
	err := s.Suggest(context.Background(), apiSuggesterEvent(), []model.InventoryItem{
		{VendorID: "vendor-1", SKU: "A", Price: 100},
	})
	require.NoError(t, err)

	assert.Equal(t, "vendor-1", got.EventData.VendorID)
	require.Len(t, got.InventoryItems, 1)
	assert.Equal(t, "A", got.InventoryItems[0].SKU)
}

func TestAPISuggesterRejectionIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "sku not in inventory"}`))
	}))
	defer srv.Close()

	s := NewAPISuggester(srv.URL, 5*time.Second)
	err := s.Suggest(context.Background(), apiSuggesterEvent(), nil)

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusUnprocessableEntity, rejected.StatusCode)
	assert.Contains(t, rejected.Detail, "sku not in inventory")
	assert.True(t, isTerminal(err))
}

func TestAPISuggesterServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewAPISuggester(srv.URL, 5*time.Second)
	err := s.Suggest(context.Background(), apiSuggesterEvent(), nil)

	require.Error(t, err)
	assert.False(t, isTerminal(err))
}

func TestAPISuggesterRateLimitIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewAPISuggester(srv.URL, 5*time.Second)
	err := s.Suggest(context.Background(), apiSuggesterEvent(), nil)

	require.Error(t, err)
	assert.False(t, isTerminal(err))
}
