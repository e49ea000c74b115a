package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/outreach/internal/analysis"
	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/internal/config"
	"github.com/JaimeStill/outreach/internal/messages"
	"github.com/JaimeStill/outreach/internal/pipeline"
	"github.com/JaimeStill/outreach/pkg/lifecycle"
)

type fakeQueue struct {
	mu        sync.Mutex
	pending   []*batches.Batch
	claimErr  error
	completed map[uuid.UUID]batches.CompleteCommand
	failed    map[uuid.UUID]batches.FailCommand
	writeCtx  []error
	swept     int
	sweepAge  time.Duration
	rejectAll bool
}

func newQueue(n int) *fakeQueue {
	q := &fakeQueue{
		completed: map[uuid.UUID]batches.CompleteCommand{},
		failed:    map[uuid.UUID]batches.FailCommand{},
	}
	for range n {
		q.pending = append(q.pending, &batches.Batch{ID: uuid.New(), ContactID: uuid.New()})
	}
	return q
}

func (q *fakeQueue) ClaimNext(context.Context) (*batches.Batch, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.claimErr != nil {
		return nil, q.claimErr
	}
	if len(q.pending) == 0 {
		return nil, nil
	}
	b := q.pending[0]
	q.pending = q.pending[1:]
	b.Status = batches.StatusProcessing
	return b, nil
}

func (q *fakeQueue) Complete(ctx context.Context, id uuid.UUID, cmd batches.CompleteCommand) (*batches.Batch, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.writeCtx = append(q.writeCtx, ctx.Err())
	if q.rejectAll {
		return nil, batches.ErrInvalidSuggestion
	}
	q.completed[id] = cmd
	return &batches.Batch{ID: id, Status: batches.StatusCompleted}, nil
}

func (q *fakeQueue) Fail(ctx context.Context, id uuid.UUID, cmd batches.FailCommand) (*batches.Batch, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.writeCtx = append(q.writeCtx, ctx.Err())
	q.failed[id] = cmd
	return &batches.Batch{ID: id, Status: batches.StatusFailed}, nil
}

func (q *fakeQueue) SweepStale(_ context.Context, maxAge time.Duration) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sweepAge = maxAge
	return q.swept, nil
}

func (q *fakeQueue) counts() (int, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.completed), len(q.failed)
}

type analyzerFunc func(ctx context.Context, b *batches.Batch) (*analysis.Result, error)

func (f analyzerFunc) Analyze(ctx context.Context, b *batches.Batch) (*analysis.Result, error) {
	return f(ctx, b)
}

func okAnalyzer() analyzerFunc {
	return func(context.Context, *batches.Batch) (*analysis.Result, error) {
		return &analysis.Result{
			Messages: []messages.Message{{Text: "hi"}},
			Suggestions: batches.SuggestionSet{
				TagSuggestions: []batches.TagSuggestion{{TagName: "friend", Confidence: 0.9}},
			},
			Prompt:  "p",
			Snippet: "Them: hi",
		}, nil
	}
}

func testConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Concurrency:   2,
		PollInterval:  "10ms",
		StaleAfter:    "15m",
		SweepInterval: "10ms",
		WriteTimeout:  "1s",
		MessageLimit:  50,
	}
}

func newWorker(t *testing.T, q pipeline.Queue, a pipeline.Analyzer) (*pipeline.Worker, *pipeline.Metrics) {
	t.Helper()
	m := pipeline.NewMetrics(prometheus.NewRegistry())
	w := pipeline.New(testConfig(), q, a, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return w, m
}

func TestProcessNext_Completes(t *testing.T) {
	q := newQueue(1)
	id := q.pending[0].ID
	w, m := newWorker(t, q, okAnalyzer())

	processed, err := w.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	require.Contains(t, q.completed, id)
	assert.Equal(t, "Them: hi", q.completed[id].Snippet)
	assert.Len(t, q.completed[id].Messages, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Processed.WithLabelValues(pipeline.OutcomeCompleted)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Busy))
}

func TestProcessNext_EmptyQueue(t *testing.T) {
	w, _ := newWorker(t, newQueue(0), okAnalyzer())

	processed, err := w.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessNext_ClaimError(t *testing.T) {
	q := newQueue(1)
	q.claimErr = errors.New("connection refused")
	w, _ := newWorker(t, q, okAnalyzer())

	processed, err := w.ProcessNext(context.Background())
	assert.False(t, processed)
	assert.ErrorContains(t, err, "connection refused")
}

func TestProcessNext_AnalysisError(t *testing.T) {
	q := newQueue(1)
	id := q.pending[0].ID
	w, m := newWorker(t, q, analyzerFunc(func(context.Context, *batches.Batch) (*analysis.Result, error) {
		return nil, errors.New("suggestion generation failed: chat call: 503")
	}))

	processed, err := w.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	assert.Equal(t, "suggestion generation failed: chat call: 503", q.failed[id].Message)
	assert.Empty(t, q.failed[id].RawResponse)
	assert.Empty(t, q.completed)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Processed.WithLabelValues(pipeline.OutcomeFailed)))
}

func TestProcessNext_Panic(t *testing.T) {
	q := newQueue(1)
	id := q.pending[0].ID
	w, _ := newWorker(t, q, analyzerFunc(func(context.Context, *batches.Batch) (*analysis.Result, error) {
		panic("nil map")
	}))

	processed, err := w.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Contains(t, q.failed[id].Message, "nil map")
}

func TestProcessNext_CompletionRejected(t *testing.T) {
	q := newQueue(1)
	q.rejectAll = true
	id := q.pending[0].ID
	w, _ := newWorker(t, q, okAnalyzer())

	processed, err := w.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Contains(t, q.failed[id].Message, "record completion")
}

func TestProcessNext_UnusableOutput(t *testing.T) {
	q := newQueue(1)
	id := q.pending[0].ID
	w, _ := newWorker(t, q, analyzerFunc(func(context.Context, *batches.Batch) (*analysis.Result, error) {
		return nil, fmt.Errorf("node execution failed: %w", &analysis.OutputError{
			Prompt:      "prompt text",
			RawResponse: "Sure! Here are some thoughts.",
			Err:         fmt.Errorf("%w: no JSON object found", analysis.ErrGeneration),
		})
	}))

	processed, err := w.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	cmd := q.failed[id]
	assert.Contains(t, cmd.Message, "no JSON object found")
	assert.Equal(t, "prompt text", cmd.Prompt)
	assert.Equal(t, "Sure! Here are some thoughts.", cmd.RawResponse)
}

func TestProcessNext_WritesAfterCancel(t *testing.T) {
	q := newQueue(1)
	id := q.pending[0].ID
	ctx, cancel := context.WithCancel(context.Background())

	w, _ := newWorker(t, q, analyzerFunc(func(ctx context.Context, _ *batches.Batch) (*analysis.Result, error) {
		cancel()
		return nil, ctx.Err()
	}))

	processed, err := w.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	_, failed := q.counts()
	assert.Equal(t, 1, failed)
	require.Len(t, q.writeCtx, 1)
	assert.NoError(t, q.writeCtx[0], "terminal write must not inherit cancellation")
	assert.Equal(t, pipeline.ErrInterrupted.Error(), q.failed[id].Message)
}

func TestSweep(t *testing.T) {
	q := newQueue(0)
	q.swept = 3
	w, m := newWorker(t, q, okAnalyzer())

	n, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 15*time.Minute, q.sweepAge)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Swept))
}

func TestRun_DrainsQueue(t *testing.T) {
	q := newQueue(6)
	w, _ := newWorker(t, q, okAnalyzer())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		completed, _ := q.counts()
		return completed == 6
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStart_Lifecycle(t *testing.T) {
	q := newQueue(2)
	w, _ := newWorker(t, q, okAnalyzer())

	lc := lifecycle.New()
	require.NoError(t, w.Start(lc))
	lc.WaitForStartup()

	require.Eventually(t, func() bool {
		completed, _ := q.counts()
		return completed == 2
	}, 5*time.Second, 10*time.Millisecond)

	assert.NoError(t, lc.Shutdown(5*time.Second))
}

func TestStart_Disabled(t *testing.T) {
	q := newQueue(1)
	cfg := testConfig()
	disabled := false
	cfg.Enabled = &disabled

	w := pipeline.New(cfg, q, okAnalyzer(), pipeline.NewMetrics(prometheus.NewRegistry()), slog.New(slog.NewTextHandler(io.Discard, nil)))

	lc := lifecycle.New()
	require.NoError(t, w.Start(lc))
	lc.WaitForStartup()
	require.NoError(t, lc.Shutdown(time.Second))

	assert.Len(t, q.pending, 1)
}
