// frame.go defines Frame, a 2D grid of interleaved pixel samples.

// Package frame provides the in-memory image representation the cvfilter
// processors consume and produce.
package frame

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Frame stores samples row-major with channels interleaved. Exactly one of
// U8, U16 and F32 is populated, the one selected by Depth.
type Frame struct {
	Geometry
	U8  []uint8
	U16 []uint16
	F32 []float32
}

func New(g Geometry) (*Frame, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	f := &Frame{}
	f.reshape(g)
	return f, nil
}

func MustNew(g Geometry) *Frame {
	f, err := New(g)
	if err != nil {
		panic(err)
	}
	return f
}

// reshape sets the geometry and makes the sample slice of the new depth
// exactly SampleCount long, reusing the already allocated memory if possible.
func (f *Frame) reshape(g Geometry) {
	n := g.SampleCount()
	f.Geometry = g
	switch g.Depth {
	case DepthU8:
		f.U8 = resize(f.U8, n)
		f.U16, f.F32 = f.U16[:0], f.F32[:0]
	case DepthU16:
		f.U16 = resize(f.U16, n)
		f.U8, f.F32 = f.U8[:0], f.F32[:0]
	case DepthF32:
		f.F32 = resize(f.F32, n)
		f.U8, f.U16 = f.U8[:0], f.U16[:0]
	}
}

func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	s = s[:n]
	clear(s)
	return s
}

func (f *Frame) String() string {
	if f == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Frame(%s)", f.Geometry)
}

// Len returns the number of samples actually stored.
func (f *Frame) Len() int {
	switch f.Depth {
	case DepthU8:
		return len(f.U8)
	case DepthU16:
		return len(f.U16)
	case DepthF32:
		return len(f.F32)
	}
	return 0
}

func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("frame is nil")
	}
	if err := f.Geometry.Validate(); err != nil {
		return err
	}
	if l, n := f.Len(), f.SampleCount(); l != n {
		return ErrInvalidGeometry{
			Geometry: f.Geometry,
			Reason:   fmt.Sprintf("expected %d samples, have %d", n, l),
		}
	}
	return nil
}

// At returns the raw (not normalized) value of sample i.
func (f *Frame) At(i int) float64 {
	switch f.Depth {
	case DepthU8:
		return float64(f.U8[i])
	case DepthU16:
		return float64(f.U16[i])
	case DepthF32:
		return float64(f.F32[i])
	}
	return math.NaN()
}

// Set stores v into sample i; integer depths round half to even and saturate.
func (f *Frame) Set(i int, v float64) {
	switch f.Depth {
	case DepthU8:
		f.U8[i] = saturate[uint8](v)
	case DepthU16:
		f.U16[i] = saturate[uint16](v)
	case DepthF32:
		f.F32[i] = float32(v)
	}
}

func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	return &Frame{
		Geometry: f.Geometry,
		U8:       cloneSlice(f.U8),
		U16:      cloneSlice(f.U16),
		F32:      cloneSlice(f.F32),
	}
}

func cloneSlice[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	r := make([]T, len(s))
	copy(r, s)
	return r
}

// CopyFrom overwrites the samples of f with the ones of src. Geometries must match.
func (f *Frame) CopyFrom(src *Frame) error {
	if f.Geometry != src.Geometry {
		return ErrShapeMismatch{Expected: f.Geometry, Actual: src.Geometry}
	}
	switch f.Depth {
	case DepthU8:
		copy(f.U8, src.U8)
	case DepthU16:
		copy(f.U16, src.U16)
	case DepthF32:
		copy(f.F32, src.F32)
	default:
		return ErrUnsupportedDepth{Depth: f.Depth}
	}
	return nil
}

// ConvertToFloat64 writes every sample multiplied by scale into dst.
func (f *Frame) ConvertToFloat64(dst []float64, scale float64) error {
	if len(dst) != f.Len() {
		return fmt.Errorf("destination has %d samples, the frame has %d", len(dst), f.Len())
	}
	switch f.Depth {
	case DepthU8:
		convertToFloat64(dst, f.U8, scale)
	case DepthU16:
		convertToFloat64(dst, f.U16, scale)
	case DepthF32:
		convertToFloat64(dst, f.F32, scale)
	default:
		return ErrUnsupportedDepth{Depth: f.Depth}
	}
	return nil
}

func convertToFloat64[T constraints.Unsigned | constraints.Float](dst []float64, src []T, scale float64) {
	if scale == 1 {
		for i, v := range src {
			dst[i] = float64(v)
		}
		return
	}
	for i, v := range src {
		dst[i] = float64(v) * scale
	}
}

// SetFromFloat64 stores src multiplied by scale into the frame's samples,
// rounding and saturating for integer depths.
func (f *Frame) SetFromFloat64(src []float64, scale float64) error {
	if len(src) != f.Len() {
		return fmt.Errorf("source has %d samples, the frame has %d", len(src), f.Len())
	}
	switch f.Depth {
	case DepthU8:
		for i, v := range src {
			f.U8[i] = saturate[uint8](v * scale)
		}
	case DepthU16:
		for i, v := range src {
			f.U16[i] = saturate[uint16](v * scale)
		}
	case DepthF32:
		for i, v := range src {
			f.F32[i] = float32(v * scale)
		}
	default:
		return ErrUnsupportedDepth{Depth: f.Depth}
	}
	return nil
}

// saturate converts v the way OpenCV's saturate_cast does: round half to even,
// then clamp into the range of T. NaN becomes zero.
func saturate[T constraints.Unsigned](v float64) T {
	maxV := float64(^T(0))
	v = math.RoundToEven(v)
	switch {
	case math.IsNaN(v):
		return 0
	case v <= 0:
		return 0
	case v >= maxV:
		return ^T(0)
	}
	return T(v)
}
