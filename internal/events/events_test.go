package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

type capturePublisher struct {
	subject  string
	data     []byte
	err      error
	failures int
	calls    int
}

func (c *capturePublisher) Publish(subject string, data []byte) error {
	c.calls++
	if c.calls <= c.failures {
		return errors.New("connection closed")
	}
	c.subject, c.data = subject, data
	return c.err
}

func TestEmitter_ContentChanged(t *testing.T) {
	pub := &capturePublisher{}
	e := NewEmitter(pub, "docsite.content.changed", nil, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	require.NoError(t, e.ContentChanged(context.Background(), SourceWatch, []string{"guide/install.md"}, 7))

	assert.Equal(t, "docsite.content.changed", pub.subject)
	var got ContentChanged
	require.NoError(t, json.Unmarshal(pub.data, &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, SourceWatch, got.Source)
	assert.Equal(t, []string{"guide/install.md"}, got.Paths)
	assert.Equal(t, 7, got.Documents)
	assert.True(t, fixed.Equal(got.Timestamp))
}

func TestEmitter_PublishFailureIsCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	e := NewEmitter(&capturePublisher{err: errors.New("no responders")}, "s", rec, nil)

	err := e.ContentChanged(context.Background(), SourceRefresh, nil, 1)
	require.Error(t, err)

	n, err := testutil.GatherAndCount(reg, "docsite_event_publishes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEmitter_NilIsNoop(t *testing.T) {
	var e *Emitter
	assert.NoError(t, e.ContentChanged(context.Background(), SourceWatch, nil, 0))
	assert.NoError(t, NewEmitter(nil, "s", nil, nil).ContentChanged(context.Background(), SourceWatch, nil, 0))
}

func TestEmitter_CanceledContext(t *testing.T) {
	pub := &capturePublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, NewEmitter(pub, "s", nil, nil).ContentChanged(ctx, SourceWatch, nil, 0), context.Canceled)
	assert.Nil(t, pub.data)
}

func TestEmitter_RetriesTransientFailures(t *testing.T) {
	pub := &capturePublisher{failures: 2}
	e := NewEmitter(pub, "s", nil, nil).
		WithRetry(retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2))

	require.NoError(t, e.ContentChanged(context.Background(), SourceRefresh, nil, 3))
	assert.Equal(t, 3, pub.calls)
	assert.NotNil(t, pub.data)
}

func TestEmitter_NoRetryByDefault(t *testing.T) {
	pub := &capturePublisher{failures: 1}
	require.Error(t, NewEmitter(pub, "s", nil, nil).ContentChanged(context.Background(), SourceRefresh, nil, 0))
	assert.Equal(t, 1, pub.calls)
}
