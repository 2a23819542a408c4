package pubsub

import "sync"

// Mailbox is a single-slot conflating mailbox. Put never blocks: a value
// that has not been received yet is replaced by the newer one, so a slow
// reader only ever misses intermediate values. Values are received from C.
type Mailbox[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
}

// NewMailbox creates an empty mailbox
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan T, 1)}
}

// Put stores v, replacing any pending value. It reports false once the
// mailbox is closed.
func (m *Mailbox[T]) Put(v T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}

	// Only Put sends, and it holds mu, so the slot is free after the drain.
	select {
	case <-m.ch:
	default:
	}
	m.ch <- v
	return true
}

// C returns the receive side of the mailbox. It is closed by Close after
// any pending value has been received.
func (m *Mailbox[T]) C() <-chan T {
	return m.ch
}

// Close stops further Puts. A pending value is still delivered. Close is
// idempotent.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	close(m.ch)
}
