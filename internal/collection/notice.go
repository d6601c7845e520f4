package collection

import (
	"sync"
	"time"

	"writer-studio/internal/apperr"
	"writer-studio/internal/model"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a user-visible outcome of a collection mutation. A failed
// create carries the draft so the user can retry without retyping it.
type Notice struct {
	Level   Level                `json:"level"`
	Action  string               `json:"action"`
	Message string               `json:"message"`
	Code    apperr.Code          `json:"code,omitempty"`
	ID      string               `json:"id,omitempty"`
	Draft   *model.ArtifactDraft `json:"draft,omitempty"`
	Time    time.Time            `json:"time"`
}

type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Recorder keeps the most recent notices in memory.
type Recorder struct {
	mu      sync.Mutex
	limit   int
	notices []Notice
}

func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 50
	}
	return &Recorder{limit: limit}
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	if over := len(r.notices) - r.limit; over > 0 {
		r.notices = append([]Notice(nil), r.notices[over:]...)
	}
}

// All returns the recorded notices oldest first.
func (r *Recorder) All() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Drain returns and forgets the recorded notices.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}

// Fanout delivers every notice to each notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(n Notice) {
	for _, to := range f {
		if to != nil {
			to.Notify(n)
		}
	}
}

func failure(action, id string, err error) Notice {
	e := apperr.From(err)
	return Notice{
		Level:   LevelError,
		Action:  action,
		Message: e.Message,
		Code:    e.Code,
		ID:      id,
		Time:    time.Now().UTC(),
	}
}

func success(action, id, msg string) Notice {
	return Notice{
		Level:   LevelInfo,
		Action:  action,
		Message: msg,
		ID:      id,
		Time:    time.Now().UTC(),
	}
}
