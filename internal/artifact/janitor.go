package artifact

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

// Janitor deletes published artifacts once their registry entry expires.
type Janitor struct {
	registry *Registry
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewJanitor(registry *Registry, interval time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Janitor{
		registry: registry,
		interval: interval,
		logger:   logger.With("component", "janitor"),
	}
}

// Sweep removes every artifact expired at now and returns how many entries
// were dropped from the registry.
func (j *Janitor) Sweep(ctx context.Context, now time.Time) (int, error) {
	expired, err := j.registry.Expired(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	for _, path := range expired {
		if err := Remove(path); err != nil {
			j.logger.Warn("failed to remove expired artifact", "path", path, "error", err)
		}
	}

	if err := j.registry.Forget(ctx, expired...); err != nil {
		return 0, err
	}
	j.logger.Debug("swept expired artifacts", "count", len(expired))
	return len(expired), nil
}

func (j *Janitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	j.done = make(chan struct{})

	go j.run(ctx, j.done)
}

func (j *Janitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Janitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := j.Sweep(ctx, now); err != nil && ctx.Err() == nil {
				j.logger.Warn("artifact sweep failed", "error", err)
			}
		}
	}
}
