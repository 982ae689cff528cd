package warmup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Target is something that can refresh its cached state
type Target interface {
	Warm(ctx context.Context, limit int) error
}

// Warmer periodically refreshes the catalog cache
type Warmer struct {
	target    Target
	interval  time.Duration
	limit     int
	scheduler *gocron.Scheduler
}

// NewWarmer creates a new warm-up worker
func NewWarmer(target Target, interval time.Duration, limit int) *Warmer {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Warmer{
		target:    target,
		interval:  interval,
		limit:     limit,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start schedules the warm-up job; the first run happens immediately.
// The scheduler stops when ctx is cancelled.
func (w *Warmer) Start(ctx context.Context) error {
	_, err := w.scheduler.Every(w.interval).SingletonMode().Do(w.warm, ctx)
	if err != nil {
		return fmt.Errorf("failed to schedule cache warm-up: %w", err)
	}

	w.scheduler.StartAsync()
	slog.Info("cache warm-up worker started", "interval", w.interval)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}

// Stop terminates the scheduler
func (w *Warmer) Stop() {
	if w.scheduler.IsRunning() {
		w.scheduler.Stop()
		slog.Info("cache warm-up worker stopped")
	}
}

func (w *Warmer) warm(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	slog.Debug("running cache warm-up cycle")

	start := time.Now()
	if err := w.target.Warm(ctx, w.limit); err != nil {
		slog.Error("cache warm-up failed", "error", err)
		return
	}

	slog.Debug("cache warm-up finished", "duration_ms", time.Since(start).Milliseconds())
}
