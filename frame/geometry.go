package frame

import (
	"fmt"
	"math"
)

// Geometry is everything that determines the layout of a Frame's samples.
type Geometry struct {
	Width    int
	Height   int
	Channels int
	Depth    Depth
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d*%d(%s)", g.Width, g.Height, g.Channels, g.Depth)
}

// SampleCount is only meaningful for a geometry that passes Validate.
func (g Geometry) SampleCount() int {
	return g.Width * g.Height * g.Channels
}

func (g Geometry) Validate() error {
	if !g.Depth.IsValid() {
		return ErrUnsupportedDepth{Depth: g.Depth}
	}
	if g.Width <= 0 || g.Height <= 0 {
		return ErrInvalidGeometry{Geometry: g, Reason: "width and height must be positive"}
	}
	if g.Channels <= 0 {
		return ErrInvalidGeometry{Geometry: g, Reason: "at least one channel is required"}
	}
	if g.Width > math.MaxInt/g.Height/g.Channels {
		return ErrInvalidGeometry{Geometry: g, Reason: "the sample count overflows int"}
	}
	return nil
}
