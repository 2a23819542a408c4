package store

import (
	"context"
	"sync"

	"task-manager/internal/domain"
	"task-manager/internal/pubsub"

	"github.com/google/uuid"
)

// Result is one emission of a live query. Err is set at most once, on the
// final result of a subscription.
type Result struct {
	Tasks []domain.Task
	Err   error
}

// Subscription is a live query registered with a Store. It emits the full
// result set initially and after every commit that changes it.
type Subscription struct {
	id     uuid.UUID
	filter domain.Filter
	store  *Store
	box    *pubsub.Mailbox[Result]

	// last and stop are guarded by store.mu
	last []domain.Task
	stop func() bool

	once sync.Once
}

func newSubscription(s *Store, filter domain.Filter) *Subscription {
	return &Subscription{
		id:     uuid.New(),
		filter: filter,
		store:  s,
		box:    pubsub.NewMailbox[Result](),
	}
}

// ID identifies the subscription in logs
func (sub *Subscription) ID() uuid.UUID {
	return sub.id
}

// Filter returns the query the subscription evaluates
func (sub *Subscription) Filter() domain.Filter {
	return sub.filter
}

// Results delivers emissions in commit order. Intermediate results are
// dropped for slow readers. The channel is closed when the subscription ends.
func (sub *Subscription) Results() <-chan Result {
	return sub.box.C()
}

// Next waits for the next emission. It reports false when ctx is done or
// the subscription has ended.
func (sub *Subscription) Next(ctx context.Context) (Result, bool) {
	select {
	case res, ok := <-sub.box.C():
		return res, ok
	case <-ctx.Done():
		return Result{}, false
	}
}

// Close stops emissions and releases the registry slot. It is safe to call
// more than once.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		sub.store.unregister(sub)
		sub.box.Close()
	})
}

// affectedBy reports whether a change from before to after can alter the
// subscription's result. Either side may be nil.
func (sub *Subscription) affectedBy(before, after *domain.Task) bool {
	return (before != nil && sub.filter.Matches(*before)) ||
		(after != nil && sub.filter.Matches(*after))
}
