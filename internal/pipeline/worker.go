// Package pipeline drives analysis batches from PENDING to a terminal
// status. A fixed pool of workers polls the queue on a jittered ticker and a
// sweep loop fails batches left in PROCESSING past the stale threshold.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lthibault/jitterbug/v2"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/outreach/internal/analysis"
	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/internal/config"
	"github.com/JaimeStill/outreach/pkg/lifecycle"
)

// ErrInterrupted is recorded on a batch whose analysis was cancelled by
// shutdown. Such batches are safe to reprocess.
var ErrInterrupted = errors.New("interrupted by shutdown; reprocess to retry")

// Queue is the slice of the batch lifecycle the worker drives.
// batches.System satisfies it.
type Queue interface {
	ClaimNext(ctx context.Context) (*batches.Batch, error)
	Complete(ctx context.Context, id uuid.UUID, cmd batches.CompleteCommand) (*batches.Batch, error)
	Fail(ctx context.Context, id uuid.UUID, cmd batches.FailCommand) (*batches.Batch, error)
	SweepStale(ctx context.Context, maxAge time.Duration) (int, error)
}

// Analyzer produces the result for one claimed batch.
// *analysis.Runtime satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, batch *batches.Batch) (*analysis.Result, error)
}

// Worker runs the batch processing pool.
type Worker struct {
	cfg      config.PipelineConfig
	queue    Queue
	analyzer Analyzer
	metrics  *Metrics
	logger   *slog.Logger
	done     chan struct{}
}

// New creates a Worker. cfg must already be finalized.
func New(
	cfg config.PipelineConfig,
	queue Queue,
	analyzer Analyzer,
	metrics *Metrics,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		cfg:      cfg,
		queue:    queue,
		analyzer: analyzer,
		metrics:  metrics,
		logger:   logger.With("system", "pipeline"),
		done:     make(chan struct{}),
	}
}

// Start registers the pool with the lifecycle coordinator. The pool runs
// until the coordinator context is cancelled; the shutdown hook waits for
// in-flight batches to finish their terminal write.
func (w *Worker) Start(lc *lifecycle.Coordinator) error {
	if !w.cfg.IsEnabled() {
		w.logger.Info("pipeline disabled")
		close(w.done)
		return nil
	}

	lc.OnStartup(func() {
		go func() {
			defer close(w.done)
			if err := w.Run(lc.Context()); err != nil {
				w.logger.Error("pipeline stopped", "error", err)
			}
		}()
		w.logger.Info("pipeline started",
			"concurrency", w.cfg.Concurrency,
			"poll_interval", w.cfg.PollIntervalDuration(),
		)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-w.done
		w.logger.Info("pipeline stopped")
	})

	return nil
}

// Done is closed once the worker has stopped, or immediately when the
// pipeline is disabled.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Run blocks running the worker loops and the sweep loop until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for i := range max(w.cfg.Concurrency, 1) {
		g.Go(func() error {
			w.poll(gctx, i)
			return nil
		})
	}

	g.Go(func() error {
		w.sweep(gctx)
		return nil
	})

	return g.Wait()
}

func (w *Worker) poll(ctx context.Context, id int) {
	interval := w.cfg.PollIntervalDuration()
	ticker := jitterbug.New(interval, &jitterbug.Norm{Stdev: interval / 10})
	defer ticker.Stop()

	logger := w.logger.With("worker", id)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx, logger)
		}
	}
}

// drain processes batches until the queue is empty or ctx is done.
func (w *Worker) drain(ctx context.Context, logger *slog.Logger) {
	for ctx.Err() == nil {
		processed, err := w.ProcessNext(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("process batch", "error", err)
			}
			return
		}
		if !processed {
			return
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	interval := w.cfg.SweepIntervalDuration()
	ticker := jitterbug.New(interval, &jitterbug.Norm{Stdev: interval / 10})
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("sweep stale batches", "error", err)
			}
		}
	}
}

// Sweep fails PROCESSING batches claimed longer ago than the stale threshold.
func (w *Worker) Sweep(ctx context.Context) (int, error) {
	n, err := w.queue.SweepStale(ctx, w.cfg.StaleAfterDuration())
	if err != nil {
		return 0, err
	}
	w.metrics.Swept.Add(float64(n))
	return n, nil
}

// ProcessNext claims one batch and drives it to COMPLETED or FAILED. It
// reports false when the queue was empty. Analysis errors and panics are
// recorded on the batch rather than returned; the returned error covers
// claim and terminal-write failures only.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	b, err := w.queue.ClaimNext(ctx)
	if err != nil {
		return false, fmt.Errorf("claim: %w", err)
	}
	if b == nil {
		return false, nil
	}

	w.metrics.Busy.Inc()
	defer w.metrics.Busy.Dec()

	start := time.Now()
	logger := w.logger.With("batch_id", b.ID, "contact_id", b.ContactID)

	result, err := w.analyze(ctx, b)

	// The terminal write must land even when ctx was cancelled mid-analysis.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.WriteTimeoutDuration())
	defer cancel()

	if err == nil {
		if _, err = w.queue.Complete(wctx, b.ID, result.Command()); err == nil {
			w.record(OutcomeCompleted, start)
			logger.Info("batch processed",
				"messages", len(result.Messages),
				"changes", result.Suggestions.ChangeCount(),
				"duration", time.Since(start),
			)
			return true, nil
		}
		err = fmt.Errorf("record completion: %w", err)
	}

	if _, ferr := w.queue.Fail(wctx, b.ID, failure(ctx, err)); ferr != nil {
		return true, fmt.Errorf("record failure for batch %s: %w", b.ID, ferr)
	}

	w.record(OutcomeFailed, start)
	logger.Warn("batch failed", "error", err, "duration", time.Since(start))
	return true, nil
}

// failure builds the FAILED record for err. A run cut short by shutdown is
// reported as ErrInterrupted rather than a bare context error.
func failure(ctx context.Context, err error) batches.FailCommand {
	cmd := analysis.FailCommand(err)
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		cmd.Message = ErrInterrupted.Error()
	}
	return cmd
}

func (w *Worker) analyze(ctx context.Context, b *batches.Batch) (result *analysis.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("analysis panicked: %v", r)
		}
	}()
	return w.analyzer.Analyze(ctx, b)
}

func (w *Worker) record(outcome string, start time.Time) {
	w.metrics.Processed.WithLabelValues(outcome).Inc()
	w.metrics.Duration.Observe(time.Since(start).Seconds())
}
