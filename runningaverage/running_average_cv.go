//go:build with_cv
// +build with_cv

package runningaverage

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/xaionaro-go/cvfilter/frame"
	"github.com/xaionaro-go/cvfilter/imageprocessor"
	"github.com/xaionaro-go/cvfilter/logger"
	"github.com/xaionaro-go/cvfilter/notifier"
	"github.com/xaionaro-go/xsync"
	"gocv.io/x/gocv"
)

// RunningAverageCV is RunningAverage computed by OpenCV. The average is kept
// in 32-bit floats, so results may differ from RunningAverage in the last
// rounding step.
type RunningAverageCV struct {
	weight weightParameter

	stateLocker      xsync.Mutex
	initialized      bool
	geometry         frame.Geometry
	conversionFactor float64
	avg              gocv.Mat
	tmp              gocv.Mat
	out              gocv.Mat
}

var _ imageprocessor.Abstract = (*RunningAverageCV)(nil)

func NewCV(cfg Config) (*RunningAverageCV, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &RunningAverageCV{}
	a.weight.value = cfg.Weight
	return a, nil
}

func (a *RunningAverageCV) String() string {
	return fmt.Sprintf("RunningAverageCV(weight=%v)", a.Weight(context.TODO()))
}

func (a *RunningAverageCV) Weight(ctx context.Context) float64 {
	return a.weight.Get(ctx)
}

func (a *RunningAverageCV) SetWeight(ctx context.Context, w float64) bool {
	return a.weight.Set(ctx, w)
}

func (a *RunningAverageCV) OnWeightChange(
	ctx context.Context,
	handler notifier.Handler[float64],
) (unsubscribe func()) {
	return a.weight.changed.Subscribe(ctx, handler)
}

// OnWeightRejected subscribes handler to SetWeight calls with an out of range
// value; the handler receives the weight that stays in effect.
func (a *RunningAverageCV) OnWeightRejected(
	ctx context.Context,
	handler notifier.Handler[float64],
) (unsubscribe func()) {
	return a.weight.rejected.Subscribe(ctx, handler)
}

// Close releases the OpenCV matrices.
func (a *RunningAverageCV) Close(ctx context.Context) error {
	a.stateLocker.Do(xsync.WithNoLogging(ctx, true), func() {
		a.releaseLocked()
	})
	return nil
}

func (a *RunningAverageCV) releaseLocked() {
	if !a.initialized {
		return
	}
	a.avg.Close()
	a.tmp.Close()
	a.out.Close()
	a.initialized = false
}

func (a *RunningAverageCV) Process(
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

func (a *RunningAverageCV) processLocked(
	ctx context.Context,
	input *frame.Frame,
	weight float64,
) (*frame.Frame, error) {
	srcType, err := matType(input.Depth, input.Channels)
	if err != nil {
		return nil, err
	}
	floatType, err := matType(frame.DepthF32, input.Channels)
	if err != nil {
		return nil, err
	}

	src, err := gocv.NewMatFromBytes(input.Height, input.Width, srcType, sampleBytes(input))
	if err != nil {
		return nil, fmt.Errorf("unable to wrap the input into a matrix: %w", err)
	}
	defer src.Close()

	if !a.initialized || a.geometry != input.Geometry {
		logger.Debugf(ctx, "(re)allocating the matrices for %s", input.Geometry)
		a.releaseLocked()
		factor, err := input.Depth.ConversionFactor()
		if err != nil {
			return nil, err
		}
		a.avg = gocv.NewMatWithSize(input.Height, input.Width, floatType)
		a.tmp = gocv.NewMatWithSize(input.Height, input.Width, floatType)
		a.out = gocv.NewMatWithSize(input.Height, input.Width, srcType)
		a.geometry = input.Geometry
		a.conversionFactor = factor
		a.initialized = true
		src.ConvertToWithParams(&a.avg, floatType, float32(1/factor), 0)
	}

	src.ConvertToWithParams(&a.tmp, floatType, float32(1/a.conversionFactor), 0)
	gocv.AccumulatedWeighted(a.tmp, &a.avg, weight)
	a.avg.ConvertToWithParams(&a.out, srcType, float32(a.conversionFactor), 0)

	output, err := frame.Pool.Get(input.Geometry)
	if err != nil {
		return nil, err
	}
	raw := a.out.ToBytes()
	dst := sampleBytes(output)
	if len(raw) != len(dst) {
		frame.Pool.Put(output)
		return nil, ErrShapeMismatch{Expected: input.Geometry, Actual: a.geometry}
	}
	copy(dst, raw)
	return output, nil
}

func matType(depth frame.Depth, channels int) (gocv.MatType, error) {
	types := map[frame.Depth][]gocv.MatType{
		frame.DepthU8:  {gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC2, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4},
		frame.DepthU16: {gocv.MatTypeCV16UC1, gocv.MatTypeCV16UC2, gocv.MatTypeCV16UC3, gocv.MatTypeCV16UC4},
		frame.DepthF32: {gocv.MatTypeCV32FC1, gocv.MatTypeCV32FC2, gocv.MatTypeCV32FC3, gocv.MatTypeCV32FC4},
	}
	byChannels, ok := types[depth]
	if !ok {
		return 0, ErrUnsupportedDepth{Depth: depth}
	}
	if channels < 1 || channels > len(byChannels) {
		return 0, fmt.Errorf("OpenCV backend supports 1..%d channels, got %d", len(byChannels), channels)
	}
	return byChannels[channels-1], nil
}

// sampleBytes returns the frame's samples as raw native-endian bytes
// without copying.
func sampleBytes(f *frame.Frame) []byte {
	switch f.Depth {
	case frame.DepthU8:
		return f.U8
	case frame.DepthU16:
		if len(f.U16) == 0 {
			return nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&f.U16[0])), len(f.U16)*2)
	case frame.DepthF32:
		if len(f.F32) == 0 {
			return nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&f.F32[0])), len(f.F32)*4)
	}
	return nil
}
