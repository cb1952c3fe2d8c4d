// Package marketplace is a typed client for the deals marketplace REST API.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// StatusError is returned when the marketplace answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("marketplace: http %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.upswap.app/api"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
	}
}

func (c *Client) Vendors(ctx context.Context) ([]VendorSummary, error) {
	var resp vendorListResponse
	if err := c.getJSON(ctx, "/vendor/lists/", &resp); err != nil {
		return nil, err
	}
	return resp.Vendors, nil
}

func (c *Client) VendorDetails(ctx context.Context, vendorID string) (*VendorDetails, error) {
	var details VendorDetails
	if err := c.getJSON(ctx, fmt.Sprintf("/vendor/details/%s/", vendorID), &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) Activities(ctx context.Context) ([]Activity, error) {
	var activities []Activity
	if err := c.getJSON(ctx, "/activities/lists/", &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (c *Client) ActivityDetails(ctx context.Context, activityID string) (*Activity, error) {
	var activity Activity
	if err := c.getJSON(ctx, fmt.Sprintf("/activities/details/%s/", activityID), &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// CreateDeal publishes a live deal. Any non-2xx response is a *StatusError so
// the publisher can log the body and retry on the next cycle.
func (c *Client) CreateDeal(ctx context.Context, deal CreateDealRequest) (*CreateDealResponse, error) {
	body, err := json.Marshal(deal)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create-deal/hackathon/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, newStatusError(resp)
	}

	var created CreateDealResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("marketplace: decode create-deal response: %w", err)
	}
	return &created, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return newStatusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("marketplace: decode %s: %w", path, err)
	}
	return nil
}

func newStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
