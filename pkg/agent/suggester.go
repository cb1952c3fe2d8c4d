package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dealsense/dealsense/pkg/model"
	"github.com/dealsense/dealsense/pkg/suggest"
)

// SuggestionStore persists generated suggestions.
type SuggestionStore interface {
	Create(ctx context.Context, suggestion *model.DealSuggestion) error
}

// LocalSuggester generates and persists suggestions in-process.
type LocalSuggester struct {
	generator *suggest.Generator
	store     SuggestionStore
}

func NewLocalSuggester(generator *suggest.Generator, store SuggestionStore) *LocalSuggester {
	return &LocalSuggester{generator: generator, store: store}
}

func (s *LocalSuggester) Suggest(ctx context.Context, event *model.Event, inventory []model.InventoryItem) error {
	suggestion, err := s.generator.Generate(ctx, event, inventory)
	if err != nil {
		return err
	}
	if err := s.store.Create(ctx, suggestion); err != nil {
		return fmt.Errorf("persist suggestion: %w", err)
	}
	return nil
}

// RejectedError marks a suggestion-api response that a retry cannot fix: the
// service judged the event or inventory payload itself unusable, the same
// class of failure the in-process generator reports as a validation error.
type RejectedError struct {
	StatusCode int
	Detail     string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("suggestion api rejected request: http %d: %s", e.StatusCode, e.Detail)
}

// APISuggester delegates generation to the suggestion API sibling service.
// Any non-error response counts as success; the service owns persistence.
type APISuggester struct {
	endpoint string
	client   *http.Client
}

func NewAPISuggester(endpoint string, timeout time.Duration) *APISuggester {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &APISuggester{
		endpoint: strings.TrimRight(endpoint, "/") + "/deals/suggest",
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *APISuggester) Suggest(ctx context.Context, event *model.Event, inventory []model.InventoryItem) error {
	payload := suggest.NewRequest(event, inventory)
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call suggestion api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(detail))
		if isRejection(resp.StatusCode) {
			return &RejectedError{StatusCode: resp.StatusCode, Detail: msg}
		}
		return fmt.Errorf("suggestion api: http %d: %s", resp.StatusCode, msg)
	}
	return nil
}

// isRejection reports whether the status says the request itself was bad.
// Timeouts and rate limits are 4xx too but clear up on their own.
func isRejection(status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return false
	}
	return status >= 400 && status < 500
}
