package runningaverage

import (
	"fmt"

	"github.com/xaionaro-go/cvfilter/frame"
)

type ErrUnsupportedDepth = frame.ErrUnsupportedDepth
type ErrShapeMismatch = frame.ErrShapeMismatch

type ErrInvalidWeight struct {
	Weight float64
}

func (e ErrInvalidWeight) Error() string {
	return fmt.Sprintf("weight %v is outside of [0, 1]", e.Weight)
}
