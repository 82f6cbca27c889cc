// avframe.go converts between libav frames and cvfilter frames.

// Package avframe lets cvfilter processors be used on decoded libav video
// frames (packed grayscale and RGB formats).
package avframe

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/cvfilter/frame"
	"github.com/xaionaro-go/cvfilter/logger"
)

// packed pixel data is requested without any row padding
const align = 1

type pixelFormatInfo struct {
	PixelFormat astiav.PixelFormat
	Channels    int
	Depth       frame.Depth
}

var pixelFormats = []pixelFormatInfo{
	{astiav.PixelFormatGray8, 1, frame.DepthU8},
	{astiav.PixelFormatGray16Le, 1, frame.DepthU16},
	{astiav.PixelFormatGrayf32Le, 1, frame.DepthF32},
	{astiav.PixelFormatRgb24, 3, frame.DepthU8},
	{astiav.PixelFormatRgba, 4, frame.DepthU8},
	{astiav.PixelFormatRgb48Le, 3, frame.DepthU16},
	{astiav.PixelFormatRgba64Le, 4, frame.DepthU16},
}

func infoByPixelFormat(pixFmt astiav.PixelFormat) (pixelFormatInfo, bool) {
	for _, info := range pixelFormats {
		if info.PixelFormat == pixFmt {
			return info, true
		}
	}
	return pixelFormatInfo{}, false
}

// PixelFormatFor returns the packed libav pixel format matching the
// channel count and depth of g.
func PixelFormatFor(g frame.Geometry) (astiav.PixelFormat, error) {
	for _, info := range pixelFormats {
		if info.Channels == g.Channels && info.Depth == g.Depth {
			return info.PixelFormat, nil
		}
	}
	return astiav.PixelFormatNone, ErrNoPixelFormat{Geometry: g}
}

// IsSupported reports whether FromAVFrame accepts frames of pixFmt.
func IsSupported(pixFmt astiav.PixelFormat) bool {
	_, ok := infoByPixelFormat(pixFmt)
	return ok
}

// FromAVFrame copies a decoded video frame into a new Frame.
func FromAVFrame(
	ctx context.Context,
	src *astiav.Frame,
) (_ret *frame.Frame, _err error) {
	logger.Tracef(ctx, "FromAVFrame")
	defer func() { logger.Tracef(ctx, "/FromAVFrame: %s %v", _ret, _err) }()

	if src == nil {
		return nil, fmt.Errorf("nil frame")
	}
	info, ok := infoByPixelFormat(src.PixelFormat())
	if !ok {
		return nil, ErrUnsupportedPixelFormat{PixelFormat: src.PixelFormat()}
	}
	dst, err := frame.New(frame.Geometry{
		Width:    src.Width(),
		Height:   src.Height(),
		Channels: info.Channels,
		Depth:    info.Depth,
	})
	if err != nil {
		return nil, err
	}

	buf, err := src.Data().Bytes(align)
	if err != nil {
		return nil, fmt.Errorf("unable to get the frame data: %w", err)
	}
	if expected := dst.SampleCount() * dst.Depth.BytesPerSample(); len(buf) < expected {
		return nil, fmt.Errorf("the frame data is too short: %d < %d", len(buf), expected)
	}

	switch dst.Depth {
	case frame.DepthU8:
		copy(dst.U8, buf)
	case frame.DepthU16:
		for i := range dst.U16 {
			dst.U16[i] = binary.LittleEndian.Uint16(buf[2*i:])
		}
	case frame.DepthF32:
		for i := range dst.F32 {
			dst.F32[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
		}
	}
	return dst, nil
}

// ToAVFrame (re)allocates dst to the geometry of src and copies the samples
// into it.
func ToAVFrame(
	ctx context.Context,
	dst *astiav.Frame,
	src *frame.Frame,
) (_err error) {
	logger.Tracef(ctx, "ToAVFrame(%s)", src)
	defer func() { logger.Tracef(ctx, "/ToAVFrame(%s): %v", src, _err) }()

	if err := src.Validate(); err != nil {
		return fmt.Errorf("invalid source frame: %w", err)
	}
	pixFmt, err := PixelFormatFor(src.Geometry)
	if err != nil {
		return err
	}

	if dst.Width() != src.Width || dst.Height() != src.Height || dst.PixelFormat() != pixFmt {
		dst.Unref()
		dst.SetWidth(src.Width)
		dst.SetHeight(src.Height)
		dst.SetPixelFormat(pixFmt)
		if err := dst.AllocBuffer(0); err != nil {
			return fmt.Errorf("unable to allocate the frame buffer: %w", err)
		}
	} else if err := dst.MakeWritable(); err != nil {
		return fmt.Errorf("unable to make the frame writable: %w", err)
	}

	var buf []byte
	switch src.Depth {
	case frame.DepthU8:
		buf = src.U8
	case frame.DepthU16:
		buf = make([]byte, 2*len(src.U16))
		for i, v := range src.U16 {
			binary.LittleEndian.PutUint16(buf[2*i:], v)
		}
	case frame.DepthF32:
		buf = make([]byte, 4*len(src.F32))
		for i, v := range src.F32 {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
		}
	}
	if err := dst.Data().SetBytes(buf, align); err != nil {
		return fmt.Errorf("unable to set the frame data: %w", err)
	}
	return nil
}
