// notifier.go implements a list of change observers.

// Package notifier delivers value-change notifications to subscribed handlers.
package notifier

import (
	"context"
	"slices"

	"github.com/xaionaro-go/cvfilter/logger"
	"github.com/xaionaro-go/xsync"
)

type Handler[T any] func(ctx context.Context, value T)

type subscription[T any] struct {
	id      uint64
	handler Handler[T]
}

// Notifier is safe for concurrent use. The zero value is ready to use.
type Notifier[T any] struct {
	locker        xsync.Mutex
	lastID        uint64
	subscriptions []subscription[T]
}

// Subscribe registers handler; handlers are called in subscription order.
// The returned function removes the subscription and may be called more
// than once.
func (n *Notifier[T]) Subscribe(
	ctx context.Context,
	handler Handler[T],
) (unsubscribe func()) {
	if handler == nil {
		return func() {}
	}
	id := xsync.DoR1(xsync.WithNoLogging(ctx, true), &n.locker, func() uint64 {
		n.lastID++
		n.subscriptions = append(n.subscriptions, subscription[T]{
			id:      n.lastID,
			handler: handler,
		})
		return n.lastID
	})
	return func() {
		n.locker.Do(xsync.WithNoLogging(context.TODO(), true), func() {
			n.subscriptions = slices.DeleteFunc(n.subscriptions, func(s subscription[T]) bool {
				return s.id == id
			})
		})
	}
}

func (n *Notifier[T]) Len(ctx context.Context) int {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &n.locker, func() int {
		return len(n.subscriptions)
	})
}

// Notify calls every handler with value. Handlers run without the lock held,
// so they may subscribe or unsubscribe.
func (n *Notifier[T]) Notify(ctx context.Context, value T) {
	logger.Tracef(ctx, "Notify(%v)", value)
	defer func() { logger.Tracef(ctx, "/Notify(%v)", value) }()
	subs := xsync.DoR1(xsync.WithNoLogging(ctx, true), &n.locker, func() []subscription[T] {
		return slices.Clone(n.subscriptions)
	})
	for _, s := range subs {
		s.handler(ctx, value)
	}
}
