package avframe

import (
	"context"
	"testing"

	"github.com/asticode/go-astiav"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/cvfilter/frame"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, g := range []frame.Geometry{
		{Width: 4, Height: 2, Channels: 1, Depth: frame.DepthU8},
		{Width: 3, Height: 3, Channels: 1, Depth: frame.DepthU16},
		{Width: 2, Height: 5, Channels: 1, Depth: frame.DepthF32},
		{Width: 5, Height: 2, Channels: 3, Depth: frame.DepthU8},
		{Width: 2, Height: 2, Channels: 4, Depth: frame.DepthU8},
		{Width: 3, Height: 1, Channels: 3, Depth: frame.DepthU16},
		{Width: 1, Height: 3, Channels: 4, Depth: frame.DepthU16},
	} {
		t.Run(g.String(), func(t *testing.T) {
			src := frame.MustNew(g)
			for i := 0; i < src.Len(); i++ {
				src.Set(i, float64(i*3))
			}

			av := astiav.AllocFrame()
			defer av.Free()
			require.NoError(t, ToAVFrame(ctx, av, src))
			require.Equal(t, g.Width, av.Width())
			require.Equal(t, g.Height, av.Height())

			back, err := FromAVFrame(ctx, av)
			require.NoError(t, err)
			require.Equal(t, g, back.Geometry)
			for i := 0; i < src.Len(); i++ {
				require.Equal(t, src.At(i), back.At(i))
			}
		})
	}
}

func TestUnsupported(t *testing.T) {
	ctx := context.Background()

	_, err := PixelFormatFor(frame.Geometry{Width: 1, Height: 1, Channels: 2, Depth: frame.DepthU8})
	require.ErrorAs(t, err, &ErrNoPixelFormat{})

	require.False(t, IsSupported(astiav.PixelFormatYuv420P))
	require.True(t, IsSupported(astiav.PixelFormatGray8))

	av := astiav.AllocFrame()
	defer av.Free()
	av.SetWidth(2)
	av.SetHeight(2)
	av.SetPixelFormat(astiav.PixelFormatYuv420P)
	require.NoError(t, av.AllocBuffer(0))
	_, err = FromAVFrame(ctx, av)
	require.ErrorAs(t, err, &ErrUnsupportedPixelFormat{})
}
