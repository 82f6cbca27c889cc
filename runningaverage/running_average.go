// running_average.go implements an exponentially weighted moving average over a stream of frames.

// Package runningaverage provides a frame processor that smooths a video
// stream by keeping a per-sample exponential moving average.
package runningaverage

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/cvfilter/frame"
	"github.com/xaionaro-go/cvfilter/imageprocessor"
	"github.com/xaionaro-go/cvfilter/logger"
	"github.com/xaionaro-go/cvfilter/notifier"
	"github.com/xaionaro-go/xsync"
)

type RunningAverage struct {
	weight weightParameter

	stateLocker xsync.Mutex
	state       *accumulator
}

var _ imageprocessor.Abstract = (*RunningAverage)(nil)

// accumulator is the per-geometry state; it is rebuilt whenever the input
// geometry changes.
type accumulator struct {
	geometry         frame.Geometry
	conversionFactor float64
	average          []float64
	scratch          []float64
	output           *frame.Frame
}

func New(cfg Config) (*RunningAverage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &RunningAverage{}
	a.weight.value = cfg.Weight
	return a, nil
}

func (a *RunningAverage) String() string {
	return fmt.Sprintf("RunningAverage(weight=%v)", a.Weight(context.TODO()))
}

// Process feeds the frame into the average and returns the updated average
// in the geometry of the input. The returned frame belongs to the caller; it
// may be handed back via frame.Pool.Put once no longer needed.
//
// Process must not be called concurrently on the same RunningAverage.
func (a *RunningAverage) Process(
	ctx context.Context,
	input *frame.Frame,
) (_ret *frame.Frame, _err error) {
	logger.Tracef(ctx, "Process(%s)", input)
	defer func() { logger.Tracef(ctx, "/Process(%s): %s %v", input, _ret, _err) }()

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input frame: %w", err)
	}

	weight := a.Weight(ctx)
	return xsync.DoA3R2(xsync.WithNoLogging(ctx, true), &a.stateLocker, a.processLocked, ctx, input, weight)
}

func (a *RunningAverage) processLocked(
	ctx context.Context,
	input *frame.Frame,
	weight float64,
) (*frame.Frame, error) {
	if a.state == nil || a.state.geometry != input.Geometry {
		state, err := newAccumulator(input)
		if err != nil {
			return nil, fmt.Errorf("unable to initialize the accumulator for %s: %w", input.Geometry, err)
		}
		if a.state != nil {
			logger.Debugf(ctx, "input geometry changed %s -> %s, reseeding the average", a.state.geometry, input.Geometry)
		} else {
			logger.Debugf(ctx, "seeding the average with a %s frame", input.Geometry)
		}
		a.state = state
	}
	st := a.state
	if err := st.checkConsistency(); err != nil {
		return nil, err
	}

	if err := input.ConvertToFloat64(st.scratch, 1/st.conversionFactor); err != nil {
		return nil, fmt.Errorf("unable to normalize the input: %w", err)
	}
	accumulateWeighted(st.average, st.scratch, weight)
	if err := st.output.SetFromFloat64(st.average, st.conversionFactor); err != nil {
		return nil, fmt.Errorf("unable to denormalize the average: %w", err)
	}

	result, err := frame.Pool.CloneOf(st.output)
	if err != nil {
		return nil, fmt.Errorf("unable to copy the output: %w", err)
	}
	return result, nil
}

func newAccumulator(input *frame.Frame) (*accumulator, error) {
	factor, err := input.Depth.ConversionFactor()
	if err != nil {
		return nil, err
	}
	output, err := frame.New(input.Geometry)
	if err != nil {
		return nil, err
	}
	n := input.SampleCount()
	st := &accumulator{
		geometry:         input.Geometry,
		conversionFactor: factor,
		average:          make([]float64, n),
		scratch:          make([]float64, n),
		output:           output,
	}

	// With a factor of 1 for f32 frames this is a plain copy, so integer
	// and float inputs share the seeding path.
	if err := input.ConvertToFloat64(st.average, 1/factor); err != nil {
		return nil, fmt.Errorf("unable to seed the average: %w", err)
	}
	return st, nil
}

func (st *accumulator) checkConsistency() error {
	n := st.geometry.SampleCount()
	if len(st.average) != n || len(st.scratch) != n {
		return ErrShapeMismatch{
			Expected: st.geometry,
			Actual:   frame.Geometry{Width: len(st.average), Height: 1, Channels: 1, Depth: frame.DepthUndefined},
		}
	}
	if st.output.Geometry != st.geometry {
		return ErrShapeMismatch{Expected: st.geometry, Actual: st.output.Geometry}
	}
	return nil
}

// accumulateWeighted does avg = avg*(1-weight) + src*weight.
func accumulateWeighted(avg, src []float64, weight float64) {
	keep := 1 - weight
	for i, v := range src {
		avg[i] = avg[i]*keep + v*weight
	}
}

// Reset drops the accumulated state; the next frame seeds a fresh average.
func (a *RunningAverage) Reset(ctx context.Context) {
	logger.Debugf(ctx, "Reset")
	a.stateLocker.Do(xsync.WithNoLogging(ctx, true), func() {
		a.state = nil
	})
}

// Geometry returns the geometry of the currently accumulated stream; false
// if no frame was processed since creation or the last Reset.
func (a *RunningAverage) Geometry(ctx context.Context) (frame.Geometry, bool) {
	return xsync.DoR2(xsync.WithNoLogging(ctx, true), &a.stateLocker, func() (frame.Geometry, bool) {
		if a.state == nil {
			return frame.Geometry{}, false
		}
		return a.state.geometry, true
	})
}

func (a *RunningAverage) Weight(ctx context.Context) float64 {
	return a.weight.Get(ctx)
}

// SetWeight applies w if it is within [0, 1] and notifies the OnWeightChange
// observers. Values outside of the range are ignored, false is returned and
// the OnWeightRejected observers receive the unchanged weight.
func (a *RunningAverage) SetWeight(ctx context.Context, w float64) bool {
	return a.weight.Set(ctx, w)
}

// OnWeightChange subscribes handler to successful SetWeight calls.
func (a *RunningAverage) OnWeightChange(
	ctx context.Context,
	handler notifier.Handler[float64],
) (unsubscribe func()) {
	return a.weight.changed.Subscribe(ctx, handler)
}

// OnWeightRejected subscribes handler to SetWeight calls with an out of range
// value; the handler receives the weight that stays in effect.
func (a *RunningAverage) OnWeightRejected(
	ctx context.Context,
	handler notifier.Handler[float64],
) (unsubscribe func()) {
	return a.weight.rejected.Subscribe(ctx, handler)
}
