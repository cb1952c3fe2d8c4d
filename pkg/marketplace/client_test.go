package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vendor/lists/", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"vendors": []map[string]string{
				{"vendor_id": "v1", "full_name": "Vendor One"},
				{"vendor_id": "v2", "full_name": "Vendor Two"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	vendors, err := c.Vendors(context.Background())
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, "v1", vendors[0].VendorID)
	assert.Equal(t, "Vendor Two", vendors[1].FullName)
}

func TestActivitiesDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/activities/lists/", r.URL.Path)
		w.Write([]byte(`[{
			"activity_id": "act-1",
			"activity_title": "Street Fair",
			"latitude": "27.5747",
			"longitude": "77.6525",
			"activity_category": {"actv_category": "Food & Dining"},
			"uploaded_images": ["https://x/1.jpg"]
		}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	activities, err := c.Activities(context.Background())
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "act-1", activities[0].ActivityID)
	assert.Equal(t, "27.5747", activities[0].Latitude)
	assert.Equal(t, "Food & Dining", activities[0].Category())
}

func TestActivityCategoryFallback(t *testing.T) {
	a := Activity{}
	assert.Equal(t, "", a.Category())
}

func TestCreateDeal(t *testing.T) {
	var got CreateDealRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/create-deal/hackathon/", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message": "Deal created", "data": {"deal_uuid": "deal-1"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	resp, err := c.CreateDeal(context.Background(), CreateDealRequest{
		DealTitle: "Street Fair",
		DealPrice: "80.00",
		Latitude:  27.5747,
	})
	require.NoError(t, err)
	assert.Equal(t, "deal-1", resp.Data.DealUUID)
	assert.Equal(t, "Street Fair", got.DealTitle)
	assert.Equal(t, "80.00", got.DealPrice)
}

func TestNonSuccessStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "missing vendor_kyc"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.CreateDeal(context.Background(), CreateDealRequest{})

	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.StatusCode)
	assert.Contains(t, serr.Body, "missing vendor_kyc")
}

func TestVendorDetailsPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vendor/details/v1/", r.URL.Path)
		w.Write([]byte(`{"vendor_id": "v1", "addresses": [{"city": "Mathura", "latitude": "27.5727", "longitude": "77.6506"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	details, err := c.VendorDetails(context.Background(), "v1")
	require.NoError(t, err)
	require.Len(t, details.Addresses, 1)
	assert.Equal(t, "Mathura", details.Addresses[0].City)
}
