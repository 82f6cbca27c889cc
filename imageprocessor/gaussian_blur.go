package imageprocessor

import (
	"context"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/xaionaro-go/cvfilter/frame"
	"github.com/xaionaro-go/cvfilter/logger"
	"go.uber.org/atomic"
)

type GaussianBlur struct {
	Radius atomic.Float64
}

var _ Abstract = (*GaussianBlur)(nil)

func NewGaussianBlur(radius float64) *GaussianBlur {
	b := &GaussianBlur{}
	b.Radius.Store(radius)
	return b
}

func (b *GaussianBlur) String() string {
	return fmt.Sprintf("GaussianBlur(%v)", b.Radius.Load())
}

// Process blurs 8-bit frames with one, three or four channels.
func (b *GaussianBlur) Process(
	ctx context.Context,
	input *frame.Frame,
) (_ret *frame.Frame, _err error) {
	logger.Tracef(ctx, "Process(%s)", input)
	defer func() { logger.Tracef(ctx, "/Process(%s): %s %v", input, _ret, _err) }()

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input frame: %w", err)
	}
	radius := b.Radius.Load()
	if radius <= 0 {
		return frame.Pool.CloneOf(input)
	}
	if input.Depth != frame.DepthU8 {
		return nil, frame.ErrUnsupportedDepth{Depth: input.Depth}
	}

	img, err := input.ToImage()
	if err != nil {
		return nil, fmt.Errorf("unable to convert the frame into Go's format: %w", err)
	}
	blurred := blur.Gaussian(img, radius)

	output, err := frame.Pool.Get(input.Geometry)
	if err != nil {
		return nil, err
	}
	copyFromRGBA(output, blurred)
	return output, nil
}

// copyFromRGBA takes the first dst.Channels components of every pixel; for
// a single channel the red component is used, which equals the luma of a
// grayscale source.
func copyFromRGBA(dst *frame.Frame, src *image.RGBA) {
	b := src.Bounds()
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			off := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			base := (y*dst.Width + x) * dst.Channels
			copy(dst.U8[base:base+dst.Channels], src.Pix[off:off+dst.Channels])
		}
	}
}
