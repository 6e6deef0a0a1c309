package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobRecorder struct {
	mu      sync.Mutex
	results map[string][]bool
}

func (r *jobRecorder) ObserveRequest(string, string, int, time.Duration) {}
func (r *jobRecorder) IncResolveFailures(string, int)                    {}
func (r *jobRecorder) SetDocuments(int)                                  {}
func (r *jobRecorder) IncSearchQuery(int)                                {}
func (r *jobRecorder) IncEventPublish(bool)                              {}
func (r *jobRecorder) ObserveJob(job string, _ time.Duration, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.results == nil {
		r.results = map[string][]bool{}
	}
	r.results[job] = append(r.results[job], success)
}

func (r *jobRecorder) get(job string) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.results[job]...)
}

func TestScheduler_RunsJobsAndRecordsOutcome(t *testing.T) {
	rec := &jobRecorder{}
	s, err := New(rec, nil)
	require.NoError(t, err)

	var runs atomic.Int32
	_, err = s.Every("refresh", 30*time.Millisecond, func(ctx context.Context) error {
		if ctx == nil {
			return errors.New("nil context")
		}
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)
	_, err = s.Every("search-sync", 30*time.Millisecond, func(context.Context) error {
		return errors.New("store closed")
	})
	require.NoError(t, err)

	s.Start(context.Background())
	require.Eventually(t, func() bool {
		return runs.Load() >= 2 && len(rec.get("search-sync")) >= 1
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())

	assert.Contains(t, rec.get("refresh"), true)
	assert.NotContains(t, rec.get("search-sync"), true)
}

func TestScheduler_SkipsAfterContextCanceled(t *testing.T) {
	s, err := New(nil, nil)
	require.NoError(t, err)

	var runs atomic.Int32
	_, err = s.Every("refresh", 20*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Start(ctx)
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Stop())
	assert.Equal(t, int32(0), runs.Load())
}

func TestScheduler_RejectsInvalidJobs(t *testing.T) {
	s, err := New(nil, nil)
	require.NoError(t, err)
	s.Start(context.Background())
	defer func() { _ = s.Stop() }()

	_, err = s.Every("zero", 0, func(context.Context) error { return nil })
	assert.Error(t, err)
	_, err = s.Every("nil", time.Second, nil)
	assert.Error(t, err)
}
