// depth.go defines the sample storage kinds a Frame can carry.

package frame

import (
	"fmt"
	"math"
)

type Depth int

const (
	DepthUndefined = Depth(iota)
	DepthU8
	DepthU16
	DepthF32
)

func (d Depth) String() string {
	switch d {
	case DepthUndefined:
		return "<undefined>"
	case DepthU8:
		return "u8"
	case DepthU16:
		return "u16"
	case DepthF32:
		return "f32"
	default:
		return fmt.Sprintf("unknown_depth_%d", int(d))
	}
}

func (d Depth) IsValid() bool {
	switch d {
	case DepthU8, DepthU16, DepthF32:
		return true
	}
	return false
}

// ConversionFactor returns the scalar mapping the depth's value range onto [0, 1].
func (d Depth) ConversionFactor() (float64, error) {
	switch d {
	case DepthU8:
		return math.MaxUint8, nil
	case DepthU16:
		return math.MaxUint16, nil
	case DepthF32:
		return 1, nil
	}
	return 0, ErrUnsupportedDepth{Depth: d}
}

func (d Depth) BytesPerSample() int {
	switch d {
	case DepthU8:
		return 1
	case DepthU16:
		return 2
	case DepthF32:
		return 4
	}
	return 0
}
