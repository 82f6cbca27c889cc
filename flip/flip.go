// flip.go implements a processor that mirrors frames and counts them.

// Package flip provides a minimal frame processor: it mirrors every frame
// and keeps a counter of the processed frames.
package flip

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/cvfilter/frame"
	"github.com/xaionaro-go/cvfilter/imageprocessor"
	"github.com/xaionaro-go/cvfilter/logger"
	"github.com/xaionaro-go/cvfilter/notifier"
	"go.uber.org/atomic"
)

type Flip struct {
	horizontal atomic.Bool
	frameCount atomic.Uint64

	horizontalChanged notifier.Notifier[bool]
	frameCountChanged notifier.Notifier[uint64]
}

var _ imageprocessor.Abstract = (*Flip)(nil)

// New returns a Flip; horizontal selects mirroring around the vertical axis
// (left<->right), otherwise frames are mirrored upside down. The frame
// counter starts at zero; use SetFrameCount to start from another value.
func New(horizontal bool) *Flip {
	f := &Flip{}
	f.horizontal.Store(horizontal)
	return f
}

func (f *Flip) String() string {
	if f.horizontal.Load() {
		return "Flip(horizontal)"
	}
	return "Flip(vertical)"
}

func (f *Flip) Horizontal() bool {
	return f.horizontal.Load()
}

func (f *Flip) SetHorizontal(ctx context.Context, v bool) {
	if f.horizontal.Swap(v) == v {
		return
	}
	f.horizontalChanged.Notify(ctx, v)
}

func (f *Flip) OnHorizontalChange(
	ctx context.Context,
	handler notifier.Handler[bool],
) (unsubscribe func()) {
	return f.horizontalChanged.Subscribe(ctx, handler)
}

func (f *Flip) FrameCount() uint64 {
	return f.frameCount.Load()
}

func (f *Flip) SetFrameCount(ctx context.Context, v uint64) {
	f.frameCount.Store(v)
	f.frameCountChanged.Notify(ctx, v)
}

func (f *Flip) OnFrameCountChange(
	ctx context.Context,
	handler notifier.Handler[uint64],
) (unsubscribe func()) {
	return f.frameCountChanged.Subscribe(ctx, handler)
}

func (f *Flip) Process(
	ctx context.Context,
	input *frame.Frame,
) (_ret *frame.Frame, _err error) {
	logger.Tracef(ctx, "Process(%s)", input)
	defer func() { logger.Tracef(ctx, "/Process(%s): %s %v", input, _ret, _err) }()

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input frame: %w", err)
	}
	output, err := frame.Pool.Get(input.Geometry)
	if err != nil {
		return nil, err
	}

	horizontal := f.horizontal.Load()
	switch input.Depth {
	case frame.DepthU8:
		mirror(output.U8, input.U8, input.Geometry, horizontal)
	case frame.DepthU16:
		mirror(output.U16, input.U16, input.Geometry, horizontal)
	case frame.DepthF32:
		mirror(output.F32, input.F32, input.Geometry, horizontal)
	default:
		frame.Pool.Put(output)
		return nil, frame.ErrUnsupportedDepth{Depth: input.Depth}
	}

	f.frameCountChanged.Notify(ctx, f.frameCount.Inc())
	return output, nil
}

func mirror[T any](dst, src []T, g frame.Geometry, horizontal bool) {
	stride := g.Width * g.Channels
	for y := 0; y < g.Height; y++ {
		if !horizontal {
			copy(dst[y*stride:(y+1)*stride], src[(g.Height-1-y)*stride:(g.Height-y)*stride])
			continue
		}
		srcRow := src[y*stride : (y+1)*stride]
		dstRow := dst[y*stride : (y+1)*stride]
		for x := 0; x < g.Width; x++ {
			copy(
				dstRow[x*g.Channels:(x+1)*g.Channels],
				srcRow[(g.Width-1-x)*g.Channels:(g.Width-x)*g.Channels],
			)
		}
	}
}
