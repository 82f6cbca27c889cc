package avframe

import (
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/cvfilter/frame"
)

type ErrUnsupportedPixelFormat struct {
	PixelFormat astiav.PixelFormat
}

func (e ErrUnsupportedPixelFormat) Error() string {
	return fmt.Sprintf("unsupported pixel format: %s", e.PixelFormat)
}

type ErrNoPixelFormat struct {
	Geometry frame.Geometry
}

func (e ErrNoPixelFormat) Error() string {
	return fmt.Sprintf("no packed pixel format can carry a %s frame", e.Geometry)
}
