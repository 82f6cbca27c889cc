package frame

import "fmt"

type ErrUnsupportedDepth struct {
	Depth Depth
}

func (e ErrUnsupportedDepth) Error() string {
	return fmt.Sprintf("unsupported sample depth: %s", e.Depth)
}

type ErrInvalidGeometry struct {
	Geometry Geometry
	Reason   string
}

func (e ErrInvalidGeometry) Error() string {
	return fmt.Sprintf("invalid frame geometry %s: %s", e.Geometry, e.Reason)
}

type ErrShapeMismatch struct {
	Expected Geometry
	Actual   Geometry
}

func (e ErrShapeMismatch) Error() string {
	return fmt.Sprintf("frame shape mismatch: expected %s, got %s", e.Expected, e.Actual)
}
