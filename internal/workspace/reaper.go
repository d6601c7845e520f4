package workspace

import (
	"context"
	"time"

	"writer-studio/internal/logger"
	"writer-studio/internal/sse"
)

// Reaper periodically drops workspaces that have been idle longer than
// ttl and have no open event stream.
type Reaper struct {
	registry *Registry
	events   *sse.Manager
	ttl      time.Duration
	interval time.Duration
	logger   *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewReaper(registry *Registry, events *sse.Manager, ttl, interval time.Duration, logger *logger.Logger) *Reaper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Reaper{
		registry: registry,
		events:   events,
		ttl:      ttl,
		interval: interval,
		logger:   logger.With("reaper"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Sweep evicts idle workspaces once and reports how many went.
func (j *Reaper) Sweep(now time.Time) int {
	evicted := 0
	for _, id := range j.registry.Idle(now.Add(-j.ttl)) {
		if j.events.HasClient(id) {
			continue
		}
		j.registry.Remove(id)
		evicted++
	}
	if evicted > 0 {
		j.logger.Info("Evicted", evicted, "idle workspaces, remaining:", j.registry.Len())
	}
	return evicted
}

// Start blocks, sweeping every interval until Stop.
func (j *Reaper) Start() {
	j.logger.Info("Starting workspace reaper with interval:", j.interval.String())

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			j.Sweep(now)
		case <-j.ctx.Done():
			j.logger.Info("Workspace reaper stopped")
			return
		}
	}
}

func (j *Reaper) Stop() {
	j.cancel()
}

func (j *Reaper) Interval() time.Duration {
	return j.interval
}
