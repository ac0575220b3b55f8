package store

import (
	"sync"
	"time"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/observability"
)

// Notifier is the single-slot notification channel. Concurrent shows
// replace one another rather than queue, and the slot self-clears after
// its TTL.
type Notifier struct {
	mu      sync.Mutex
	current *domain.Notification
	timer   *time.Timer
	gen     uint64 // bumped on every Show/Hide; stale timers check it

	ttl     time.Duration
	metrics *observability.Metrics
	bcast   *broadcaster[*domain.Notification]
}

// NewNotifier creates a notifier with the given auto-clear TTL.
func NewNotifier(ttl time.Duration, metrics *observability.Metrics) *Notifier {
	return &Notifier{
		ttl:     ttl,
		metrics: metrics,
		bcast:   newBroadcaster[*domain.Notification](),
	}
}

// Show replaces the slot and restarts the auto-clear timer.
func (n *Notifier) Show(title, message string, kind domain.NotificationKind) {
	n.mu.Lock()
	n.current = &domain.Notification{
		Title:   title,
		Message: message,
		Kind:    kind,
		At:      time.Now(),
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	// An already-fired timer for the previous notification may still be
	// waiting on the mutex; the generation check keeps it from clearing
	// this one.
	g := n.gen
	n.timer = time.AfterFunc(n.ttl, func() { n.hideIfCurrent(g) })
	snap := n.current
	n.mu.Unlock()

	n.metrics.IncrNotification(string(kind))
	n.bcast.publish(snap)
}

// Hide clears the slot. Safe to call at any time.
func (n *Notifier) Hide() {
	n.mu.Lock()
	n.gen++
	n.clearLocked()
	n.mu.Unlock()

	n.bcast.publish(nil)
}

// hideIfCurrent is the auto-clear path: it only clears the slot when no
// newer Show has replaced the notification the timer was armed for.
func (n *Notifier) hideIfCurrent(g uint64) {
	n.mu.Lock()
	if n.gen != g {
		n.mu.Unlock()
		return
	}
	n.gen++
	n.clearLocked()
	n.mu.Unlock()

	n.bcast.publish(nil)
}

func (n *Notifier) clearLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
}

// Current returns the visible notification, nil when the slot is empty.
func (n *Notifier) Current() *domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	cp := *n.current
	return &cp
}

// Subscribe registers a listener; nil snapshots signal a cleared slot.
func (n *Notifier) Subscribe() (<-chan *domain.Notification, func()) {
	return n.bcast.subscribe()
}
