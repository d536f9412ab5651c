// Package notify holds transient user-facing notifications (toasts)
package notify

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// Level is the visual weight of a notification
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// DefaultTTL is how long a toast stays visible when no TTL is configured
const DefaultTTL = 5 * time.Second

// Notification is one toast
type Notification struct {
	ID        string      `json:"id"`
	Level     Level       `json:"level"`
	Message   string      `json:"message"`
	Detail    interface{} `json:"detail,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`

	seq uint64
}

// Tray keeps notifications until they are drained or expire
type Tray struct {
	items   *cache.Cache
	seq     atomic.Uint64
	drainMu sync.Mutex
	logger  zerolog.Logger

	hooksMu sync.RWMutex
	hooks   []func(Notification)
}

// NewTray creates a tray whose entries live for ttl
func NewTray(ttl time.Duration, logger zerolog.Logger) *Tray {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tray{
		items:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Push adds a notification and returns it
func (t *Tray) Push(level Level, message string, detail interface{}) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Detail:    detail,
		CreatedAt: time.Now(),
		seq:       t.seq.Add(1),
	}
	t.items.Set(n.ID, n, cache.DefaultExpiration)
	t.logger.Debug().Str("id", n.ID).Str("level", string(level)).Str("message", message).Msg("Notification queued")

	t.hooksMu.RLock()
	for _, hook := range t.hooks {
		hook(n)
	}
	t.hooksMu.RUnlock()
	return n
}

// OnPush registers fn to be called synchronously with every pushed
// notification
func (t *Tray) OnPush(fn func(Notification)) {
	t.hooksMu.Lock()
	t.hooks = append(t.hooks, fn)
	t.hooksMu.Unlock()
}

// Notify shows an error toast
func (t *Tray) Notify(message string, detail interface{}) {
	t.Push(LevelError, message, detail)
}

// Info shows an informational toast
func (t *Tray) Info(message string) {
	t.Push(LevelInfo, message, nil)
}

// Drain returns live notifications oldest first and removes them
func (t *Tray) Drain() []Notification {
	t.drainMu.Lock()
	defer t.drainMu.Unlock()

	live := t.items.Items()
	out := make([]Notification, 0, len(live))
	for id, item := range live {
		if n, ok := item.Object.(Notification); ok {
			out = append(out, n)
		}
		t.items.Delete(id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].seq < out[j].seq
	})
	return out
}

// Len reports how many notifications are still visible
func (t *Tray) Len() int {
	return len(t.items.Items())
}
