package auth

import (
	"context"
	"sync"
	"time"

	"writer-studio/internal/logger"
)

// Provider exposes the current owner and change notifications. Components
// receive a Provider explicitly instead of reading shared storage.
type Provider interface {
	Current() Owner
	// Subscribe registers fn for every distinct owner transition. If the
	// owner is already resolved fn is called once with it before returning.
	Subscribe(fn func(Owner)) (cancel func())
}

// Monitor tracks the owner stored in a Slot. Writers of a Watchable slot
// wake it immediately; a fixed-interval poll bounds how stale it can be
// for slots that cannot push.
type Monitor struct {
	slot     Slot
	interval time.Duration
	logger   *logger.Logger

	// checkMu serializes read+dispatch so subscribers see transitions in order.
	checkMu sync.Mutex

	mu      sync.Mutex
	current Owner
	broken  bool
	subs    map[int]func(Owner)
	nextSub int

	kick chan struct{}
}

func NewMonitor(slot Slot, interval time.Duration, logger *logger.Logger) *Monitor {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Monitor{
		slot:     slot,
		interval: interval,
		logger:   logger.With("auth"),
		subs:     make(map[int]func(Owner)),
		kick:     make(chan struct{}, 1),
	}
}

// Current returns the last observed owner.
func (m *Monitor) Current() Owner {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Monitor) Subscribe(fn func(Owner)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	current := m.current
	m.mu.Unlock()

	if current.IsResolved() {
		fn(current)
	}

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Notify asks the run loop to re-read the slot now.
func (m *Monitor) Notify() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// Check reads the slot once and dispatches a transition if the owner
// changed. A read failure is permanent: the owner becomes Absent and the
// slot is never read again.
func (m *Monitor) Check() Owner {
	m.checkMu.Lock()
	defer m.checkMu.Unlock()

	m.mu.Lock()
	broken := m.broken
	m.mu.Unlock()
	if broken {
		return m.Current()
	}

	next := Absent()
	id, err := m.slot.Read()
	if err != nil {
		m.logger.Warn("Identity slot unavailable, treating user as logged out:", err)
		m.mu.Lock()
		m.broken = true
		m.mu.Unlock()
	} else {
		next = Known(id)
	}

	m.set(next)
	return next
}

func (m *Monitor) set(next Owner) {
	m.mu.Lock()
	if next == m.current {
		m.mu.Unlock()
		return
	}
	prev := m.current
	m.current = next
	subs := make([]func(Owner), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	m.logger.Info("Owner changed:", prev, "->", next)
	for _, fn := range subs {
		fn(next)
	}
}

// Run checks immediately, then on every tick and every Notify, until ctx
// is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	if w, ok := m.slot.(Watchable); ok {
		cancel := w.Watch(m.Notify)
		defer cancel()
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check()
		case <-m.kick:
			m.Check()
		}
	}
}
