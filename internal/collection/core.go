package collection

import (
	"context"
	"sync"

	"writer-studio/internal/auth"
	"writer-studio/internal/model"
)

// item is what the copy-on-write core needs from an entry.
type item[T any] interface {
	Key() string
	Clone() T
	IsPending() bool
	SetStatus(model.Status)
}

// core holds one owner's ordered entries. The slice is never mutated in
// place: every step builds a new slice and swaps it under mu, so readers
// never observe a half-applied mutation.
//
// epoch increments on every owner change. A remote call captures the epoch
// when it starts and its result is dropped if the epoch moved meanwhile.
type core[T item[T]] struct {
	mu    sync.Mutex
	owner auth.Owner
	epoch uint64
	items []T

	emitMu    sync.Mutex
	listeners map[int]*listener[T]
	nextID    int
}

func newCore[T item[T]]() core[T] {
	return core[T]{listeners: make(map[int]*listener[T])}
}

// session returns the owner and epoch a mutation should run under.
func (c *core[T]) session() (auth.Owner, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner, c.epoch
}

func (c *core[T]) Owner() auth.Owner {
	owner, _ := c.session()
	return owner
}

// lookup returns the entry for id and the epoch it was read under.
func (c *core[T]) lookup(id string) (T, auth.Owner, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := indexOf(c.items, id); i >= 0 {
		return c.items[i], c.owner, c.epoch, true
	}
	var zero T
	return zero, c.owner, c.epoch, false
}

// apply swaps in fn's result if epoch is still current and notifies
// listeners. It reports whether the swap happened.
func (c *core[T]) apply(epoch uint64, fn func([]T) []T) bool {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return false
	}
	c.items = fn(c.items)
	c.mu.Unlock()
	c.emit()
	return true
}

// load clears the entries and refills them from list when owner differs
// from the current owner. Re-observing the same owner does nothing.
func (c *core[T]) load(ctx context.Context, owner auth.Owner, list func(context.Context, auth.Owner) []T) bool {
	c.mu.Lock()
	if owner == c.owner {
		c.mu.Unlock()
		return false
	}
	c.owner = owner
	c.epoch++
	epoch := c.epoch
	c.items = nil
	c.mu.Unlock()
	c.emit()

	if !owner.IsKnown() {
		return true
	}

	loaded := list(ctx, owner)
	for i, it := range loaded {
		// Whatever the store returned is confirmed by definition.
		loaded[i] = it.Clone()
		loaded[i].SetStatus(model.StatusConfirmed)
	}
	c.apply(epoch, func(current []T) []T {
		// Entries added while the list call was in flight stay in front.
		merged := make([]T, 0, len(current)+len(loaded))
		seen := make(map[string]struct{}, len(current))
		for _, it := range current {
			seen[it.Key()] = struct{}{}
			merged = append(merged, it)
		}
		for _, it := range loaded {
			if _, dup := seen[it.Key()]; !dup {
				merged = append(merged, it)
			}
		}
		return merged
	})
	return true
}

// Follow loads on every owner transition reported by provider until ctx is
// done or the returned cancel is called.
func (c *core[T]) follow(ctx context.Context, provider auth.Provider, load func(context.Context, auth.Owner)) func() {
	cancel := provider.Subscribe(func(owner auth.Owner) {
		if ctx.Err() != nil {
			return
		}
		load(ctx, owner)
	})
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return cancel
}

// Snapshot returns copies of the entries in display order.
func (c *core[T]) Snapshot() []T {
	c.mu.Lock()
	items := c.items
	c.mu.Unlock()

	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

func (c *core[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Get returns a copy of the entry for id.
func (c *core[T]) Get(id string) (T, bool) {
	it, _, _, ok := c.lookup(id)
	if !ok {
		return it, false
	}
	return it.Clone(), true
}

// OnChange registers fn to receive new snapshots. fn runs on its own
// goroutine, so a slow listener never holds up a mutation; it may skip
// intermediate snapshots but always ends on the latest one.
func (c *core[T]) OnChange(fn func([]T)) (cancel func()) {
	l := newListener(fn)

	c.emitMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.emitMu.Unlock()

	go l.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.emitMu.Lock()
			delete(c.listeners, id)
			c.emitMu.Unlock()
			l.stop()
		})
	}
}

// emit hands a fresh snapshot to every listener. Snapshotting under
// emitMu keeps offers in state order.
func (c *core[T]) emit() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if len(c.listeners) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, l := range c.listeners {
		l.offer(snap)
	}
}

// listener holds at most one undelivered snapshot; a newer offer replaces
// an older one.
type listener[T any] struct {
	fn func([]T)

	mu      sync.Mutex
	pending []T
	has     bool

	wake chan struct{}
	done chan struct{}
}

func newListener[T any](fn func([]T)) *listener[T] {
	return &listener[T]{
		fn:   fn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (l *listener[T]) offer(snap []T) {
	l.mu.Lock()
	l.pending, l.has = snap, true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *listener[T]) run() {
	for {
		select {
		case <-l.done:
			return
		case <-l.wake:
		}

		l.mu.Lock()
		snap, has := l.pending, l.has
		l.pending, l.has = nil, false
		l.mu.Unlock()

		select {
		case <-l.done:
			return
		default:
		}
		if has {
			l.fn(snap)
		}
	}
}

func (l *listener[T]) stop() {
	close(l.done)
}

func indexOf[T item[T]](items []T, id string) int {
	for i, it := range items {
		if it.Key() == id {
			return i
		}
	}
	return -1
}

func prepend[T item[T]](items []T, it T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, it)
	return append(out, items...)
}

// replace swaps the entry keyed id for it, keeping its position. A missing
// id leaves the slice as is.
func replace[T item[T]](items []T, id string, it T) []T {
	i := indexOf(items, id)
	if i < 0 {
		return items
	}
	out := append([]T(nil), items...)
	out[i] = it
	return out
}

func without[T item[T]](items []T, id string) []T {
	i := indexOf(items, id)
	if i < 0 {
		return items
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}
