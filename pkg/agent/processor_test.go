package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dealsense/dealsense/pkg/ai"
	"github.com/dealsense/dealsense/pkg/model"
	"github.com/dealsense/dealsense/pkg/suggest"
)

type fakeEventSource struct {
	events    []model.Event
	listErr   error
	processed map[uint]bool
}

func (f *fakeEventSource) ListUnprocessed(context.Context) ([]model.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeEventSource) MarkProcessed(_ context.Context, eventID uint) error {
	if f.processed == nil {
		f.processed = make(map[uint]bool)
	}
	f.processed[eventID] = true
	return nil
}

type fakeInventorySource struct {
	items   map[string][]model.InventoryItem
	failFor map[string]error
}

func (f *fakeInventorySource) ListByVendor(_ context.Context, vendorID string) ([]model.InventoryItem, error) {
	if err, ok := f.failFor[vendorID]; ok {
		return nil, err
	}
	return f.items[vendorID], nil
}

type fakeSuggester struct {
	errFor map[uint]error
	calls  []uint
}

func (f *fakeSuggester) Suggest(_ context.Context, event *model.Event, _ []model.InventoryItem) error {
	f.calls = append(f.calls, event.ID)
	return f.errFor[event.ID]
}

func pendingEvents() []model.Event {
	return []model.Event{
		{ID: 1, ActivityID: "a1", VendorID: "v1"},
		{ID: 2, ActivityID: "a2", VendorID: "v2"},
		{ID: 3, ActivityID: "a3", VendorID: "v3"},
	}
}

func TestProcessPendingAllSucceed(t *testing.T) {
	events := &fakeEventSource{events: pendingEvents()}
	inventory := &fakeInventorySource{}
	suggester := &fakeSuggester{}
	p := NewProcessor(events, inventory, suggester, zap.NewNop(), 0, 0)

	report, err := p.ProcessPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, []uint{1, 2, 3}, suggester.calls)
	assert.True(t, events.processed[1])
	assert.True(t, events.processed[2])
	assert.True(t, events.processed[3])
}

func TestProcessPendingIsolatesFailures(t *testing.T) {
	// Vendor v2's inventory fetch fails; the other two events still process
	// and event 2 stays unprocessed for the next cycle.
	events := &fakeEventSource{events: pendingEvents()}
	inventory := &fakeInventorySource{
		failFor: map[string]error{"v2": errors.New("connection refused")},
	}
	suggester := &fakeSuggester{}
	p := NewProcessor(events, inventory, suggester, zap.NewNop(), 0, 0)

	report, err := p.ProcessPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, events.processed[1])
	assert.False(t, events.processed[2])
	assert.True(t, events.processed[3])
}

func TestProcessPendingTerminalErrorMarksProcessed(t *testing.T) {
	events := &fakeEventSource{events: pendingEvents()}
	inventory := &fakeInventorySource{}
	suggester := &fakeSuggester{errFor: map[uint]error{
		2: &suggest.ValidationError{Field: "suggested_product_sku", Reason: "not in inventory"},
	}}
	p := NewProcessor(events, inventory, suggester, zap.NewNop(), 0, 0)

	report, err := p.ProcessPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Failed)
	// Terminal: retrying would reproduce the failure, so the event is done.
	assert.True(t, events.processed[2])
}

func TestProcessPendingBlockedPromptIsTerminal(t *testing.T) {
	events := &fakeEventSource{events: pendingEvents()[:1]}
	inventory := &fakeInventorySource{}
	suggester := &fakeSuggester{errFor: map[uint]error{
		1: &ai.BlockedError{Reason: "SAFETY"},
	}}
	p := NewProcessor(events, inventory, suggester, zap.NewNop(), 0, 0)

	report, err := p.ProcessPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.True(t, events.processed[1])
}

func TestProcessPendingAPIRejectionIsTerminal(t *testing.T) {
	events := &fakeEventSource{events: pendingEvents()[:1]}
	inventory := &fakeInventorySource{}
	suggester := &fakeSuggester{errFor: map[uint]error{
		1: &RejectedError{StatusCode: 422, Detail: "sku not in inventory"},
	}}
	p := NewProcessor(events, inventory, suggester, zap.NewNop(), 0, 0)

	report, err := p.ProcessPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.True(t, events.processed[1])
}

func TestProcessPendingTransientErrorLeavesUnprocessed(t *testing.T) {
	events := &fakeEventSource{events: pendingEvents()[:1]}
	inventory := &fakeInventorySource{}
	suggester := &fakeSuggester{errFor: map[uint]error{
		1: errors.New("502 from upstream"),
	}}
	p := NewProcessor(events, inventory, suggester, zap.NewNop(), 0, 0)

	report, err := p.ProcessPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.False(t, events.processed[1])
}

func TestProcessPendingListError(t *testing.T) {
	events := &fakeEventSource{listErr: errors.New("db down")}
	p := NewProcessor(events, &fakeInventorySource{}, &fakeSuggester{}, zap.NewNop(), 0, 0)

	_, err := p.ProcessPending(context.Background())
	assert.Error(t, err)
}

func TestProcessPendingEmpty(t *testing.T) {
	events := &fakeEventSource{}
	suggester := &fakeSuggester{}
	p := NewProcessor(events, &fakeInventorySource{}, suggester, zap.NewNop(), 0, 0)

	report, err := p.ProcessPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ProcessReport{}, report)
	assert.Empty(t, suggester.calls)
}
