package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSender struct {
	name      string
	delivered []Alert
	err       error
}

func (f *fakeSender) Deliver(_ context.Context, alert Alert) error {
	f.delivered = append(f.delivered, alert)
	return f.err
}

func (f *fakeSender) Name() string { return f.name }

func TestNotifierFiltersOnEvent(t *testing.T) {
	sender := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{sender}, []string{"opportunity"}, testLogger())

	require.NoError(t, n.Send(context.Background(), Alert{Event: EventOpportunity, Title: "in"}))
	require.NoError(t, n.Send(context.Background(), Alert{Event: Event("heartbeat"), Title: "out"}))

	require.Len(t, sender.delivered, 1)
	assert.Equal(t, "in", sender.delivered[0].Title)
}

func TestNotifierEmptyFilterAllowsEverything(t *testing.T) {
	sender := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{sender}, nil, testLogger())

	require.NoError(t, n.Send(context.Background(), Alert{Event: Event("anything")}))
	assert.Len(t, sender.delivered, 1)
}

func TestNotifierIgnoresBlankFilterEntries(t *testing.T) {
	sender := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{sender}, []string{"", "  "}, testLogger())

	// Blank entries must not turn the filter on.
	require.NoError(t, n.Send(context.Background(), Alert{Event: EventOpportunity}))
	assert.Len(t, sender.delivered, 1)
}

func TestNotifierDeliversPastFailingSender(t *testing.T) {
	broken := &fakeSender{name: "broken", err: errors.New("webhook down")}
	healthy := &fakeSender{name: "healthy"}
	n := NewNotifier([]Sender{broken, healthy}, nil, testLogger())

	err := n.Send(context.Background(), Alert{Event: EventOpportunity, Title: "t"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "webhook down")
	// The failure on one channel must not block the other.
	assert.Len(t, healthy.delivered, 1)
}
