package runningaverage

import (
	"context"

	"github.com/xaionaro-go/cvfilter/logger"
	"github.com/xaionaro-go/cvfilter/notifier"
	"github.com/xaionaro-go/xsync"
)

// weightParameter is a live-adjustable weight: it may be read and changed
// from other goroutines than the one processing frames.
//
// setLocker serializes Set calls including their notifications, so the
// handlers observe the values in the order they were stored. Handlers may
// call Get but must not call Set.
type weightParameter struct {
	setLocker xsync.Mutex
	locker    xsync.Mutex
	value     float64
	changed   notifier.Notifier[float64]
	rejected  notifier.Notifier[float64]
}

func (p *weightParameter) Get(ctx context.Context) float64 {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &p.locker, func() float64 {
		return p.value
	})
}

func (p *weightParameter) Set(
	ctx context.Context,
	w float64,
) (_ret bool) {
	logger.Tracef(ctx, "Set(%v)", w)
	defer func() { logger.Tracef(ctx, "/Set(%v): %v", w, _ret) }()

	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &p.setLocker, func() bool {
		if !isValidWeight(w) {
			logger.Debugf(ctx, "ignoring the new weight: %v", ErrInvalidWeight{Weight: w})
			p.rejected.Notify(ctx, p.Get(ctx))
			return false
		}
		p.locker.Do(xsync.WithNoLogging(ctx, true), func() {
			p.value = w
		})
		p.changed.Notify(ctx, w)
		return true
	})
}
