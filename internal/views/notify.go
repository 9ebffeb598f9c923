package views

import (
	"slices"
	"sync"
	"time"
)

// DefaultToastTTL — всплывающее уведомление исчезает само через 3 секунды.
const DefaultToastTTL = 3 * time.Second

type Toast struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier — очередь временных уведомлений об ошибках действий.
type Notifier struct {
	mu     sync.Mutex
	ttl    time.Duration
	seq    uint64
	toasts []Toast
	timers map[uint64]*time.Timer
}

func NewNotifier(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &Notifier{ttl: ttl, timers: map[uint64]*time.Timer{}}
}

// Push добавляет уведомление и планирует его снятие через ttl.
func (n *Notifier) Push(msg string) Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	t := Toast{ID: n.seq, Message: msg, CreatedAt: time.Now()}
	n.toasts = append(n.toasts, t)
	id := t.ID
	n.timers[id] = time.AfterFunc(n.ttl, func() { n.Dismiss(id) })
	return t
}

func (n *Notifier) Dismiss(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if tm, ok := n.timers[id]; ok {
		tm.Stop()
		delete(n.timers, id)
	}
	n.toasts = slices.DeleteFunc(n.toasts, func(t Toast) bool { return t.ID == id })
}

// Active — текущие (ещё не снятые) уведомления.
func (n *Notifier) Active() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.toasts)
}

// Close снимает все таймеры (например, когда страница закрыта).
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, tm := range n.timers {
		tm.Stop()
		delete(n.timers, id)
	}
	n.toasts = nil
}
