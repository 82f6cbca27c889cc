// abstract.go defines the Abstract interface for image processors.

// Package imageprocessor provides the common contract of frame processors
// and a few generic ones.
package imageprocessor

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/cvfilter/frame"
)

// Abstract processes one frame at a time. Implementations must not modify
// the input frame and must return a frame owned by the caller.
type Abstract interface {
	fmt.Stringer
	Process(context.Context, *frame.Frame) (*frame.Frame, error)
}
