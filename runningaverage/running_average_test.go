package runningaverage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/cvfilter/frame"
)

func filled(t *testing.T, g frame.Geometry, v float64) *frame.Frame {
	f, err := frame.New(g)
	require.NoError(t, err)
	for i := 0; i < f.Len(); i++ {
		f.Set(i, v)
	}
	return f
}

func newAverage(t *testing.T, weight float64) *RunningAverage {
	a, err := New(Config{Weight: weight})
	require.NoError(t, err)
	return a
}

func TestRunningAverageScenario(t *testing.T) {
	ctx := context.Background()
	g := frame.Geometry{Width: 2, Height: 2, Channels: 1, Depth: frame.DepthU8}
	a := newAverage(t, 0.1)

	out, err := a.Process(ctx, filled(t, g, 255))
	require.NoError(t, err)
	require.Equal(t, []uint8{255, 255, 255, 255}, out.U8)

	out, err = a.Process(ctx, filled(t, g, 255))
	require.NoError(t, err)
	require.Equal(t, []uint8{255, 255, 255, 255}, out.U8)

	out, err = a.Process(ctx, filled(t, g, 0))
	require.NoError(t, err)
	require.Equal(t, []uint8{230, 230, 230, 230}, out.U8)
}

func TestRunningAverageKeepsGeometry(t *testing.T) {
	ctx := context.Background()
	for _, g := range []frame.Geometry{
		{Width: 3, Height: 2, Channels: 1, Depth: frame.DepthU8},
		{Width: 1, Height: 5, Channels: 3, Depth: frame.DepthU8},
		{Width: 4, Height: 4, Channels: 4, Depth: frame.DepthU16},
		{Width: 2, Height: 3, Channels: 2, Depth: frame.DepthF32},
	} {
		t.Run(g.String(), func(t *testing.T) {
			a := newAverage(t, DefaultWeight)
			for i := 0; i < 3; i++ {
				out, err := a.Process(ctx, filled(t, g, float64(i)))
				require.NoError(t, err)
				require.Equal(t, g, out.Geometry)
				require.NoError(t, out.Validate())
			}
			cur, ok := a.Geometry(ctx)
			require.True(t, ok)
			require.Equal(t, g, cur)
		})
	}
}

func TestRunningAverageConvergence(t *testing.T) {
	ctx := context.Background()
	g := frame.Geometry{Width: 2, Height: 2, Channels: 3, Depth: frame.DepthU8}
	a := newAverage(t, 0.5)

	_, err := a.Process(ctx, filled(t, g, 0))
	require.NoError(t, err)

	target := filled(t, g, 200)
	var last *frame.Frame
	for i := 0; i < 40; i++ {
		out, err := a.Process(ctx, target)
		require.NoError(t, err)
		for idx, v := range out.U8 {
			if last != nil {
				require.GreaterOrEqual(t, v, last.U8[idx], "iteration %d", i)
			}
			require.LessOrEqual(t, v, uint8(200), "iteration %d", i)
		}
		last = out
	}
	require.Equal(t, target.U8, last.U8)
}

func TestRunningAverageWeightBoundaries(t *testing.T) {
	ctx := context.Background()
	g := frame.Geometry{Width: 2, Height: 1, Channels: 1, Depth: frame.DepthU16}

	t.Run("zero-freezes", func(t *testing.T) {
		a := newAverage(t, 0)
		out, err := a.Process(ctx, filled(t, g, 1000))
		require.NoError(t, err)
		require.Equal(t, []uint16{1000, 1000}, out.U16)
		for _, v := range []float64{0, 65535, 12345} {
			out, err = a.Process(ctx, filled(t, g, v))
			require.NoError(t, err)
			require.Equal(t, []uint16{1000, 1000}, out.U16)
		}
	})

	t.Run("one-tracks", func(t *testing.T) {
		a := newAverage(t, 1)
		for _, v := range []float64{1000, 0, 65535, 12345} {
			out, err := a.Process(ctx, filled(t, g, v))
			require.NoError(t, err)
			require.Equal(t, []uint16{uint16(v), uint16(v)}, out.U16)
		}
	})

	t.Run("half-rounds-to-even", func(t *testing.T) {
		a := newAverage(t, 0.5)
		_, err := a.Process(ctx, filled(t, g, 65535))
		require.NoError(t, err)
		out, err := a.Process(ctx, filled(t, g, 0))
		require.NoError(t, err)
		require.Equal(t, []uint16{32768, 32768}, out.U16)
	})
}

func TestRunningAverageFloat(t *testing.T) {
	ctx := context.Background()
	g := frame.Geometry{Width: 1, Height: 1, Channels: 2, Depth: frame.DepthF32}
	a := newAverage(t, 0.25)

	// f32 samples are neither scaled nor clamped
	out, err := a.Process(ctx, filled(t, g, 8))
	require.NoError(t, err)
	require.Equal(t, []float32{8, 8}, out.F32)

	out, err = a.Process(ctx, filled(t, g, -8))
	require.NoError(t, err)
	require.Equal(t, []float32{4, 4}, out.F32)
}

func TestRunningAverageReseedsOnGeometryChange(t *testing.T) {
	ctx := context.Background()
	a := newAverage(t, 0.1)
	small := frame.Geometry{Width: 2, Height: 2, Channels: 1, Depth: frame.DepthU8}

	for i := 0; i < 5; i++ {
		_, err := a.Process(ctx, filled(t, small, 255))
		require.NoError(t, err)
	}

	for _, g := range []frame.Geometry{
		{Width: 3, Height: 3, Channels: 1, Depth: frame.DepthU8},
		{Width: 3, Height: 3, Channels: 3, Depth: frame.DepthU8},
		{Width: 3, Height: 3, Channels: 3, Depth: frame.DepthU16},
		small,
	} {
		out, err := a.Process(ctx, filled(t, g, 7))
		require.NoError(t, err, g.String())
		require.Equal(t, g, out.Geometry)
		for i := 0; i < out.Len(); i++ {
			require.Equal(t, float64(7), out.At(i), g.String())
		}
	}
}

func TestRunningAverageReset(t *testing.T) {
	ctx := context.Background()
	g := frame.Geometry{Width: 1, Height: 1, Channels: 1, Depth: frame.DepthU8}
	a := newAverage(t, 0.1)

	_, ok := a.Geometry(ctx)
	require.False(t, ok)

	_, err := a.Process(ctx, filled(t, g, 255))
	require.NoError(t, err)
	a.Reset(ctx)
	_, ok = a.Geometry(ctx)
	require.False(t, ok)

	out, err := a.Process(ctx, filled(t, g, 10))
	require.NoError(t, err)
	require.Equal(t, []uint8{10}, out.U8)
}

func TestRunningAverageOutputIsOwned(t *testing.T) {
	ctx := context.Background()
	g := frame.Geometry{Width: 2, Height: 1, Channels: 1, Depth: frame.DepthU8}
	a := newAverage(t, 0.1)

	first, err := a.Process(ctx, filled(t, g, 100))
	require.NoError(t, err)
	first.U8[0] = 0

	second, err := a.Process(ctx, filled(t, g, 100))
	require.NoError(t, err)
	require.Equal(t, []uint8{100, 100}, second.U8)
	require.Equal(t, []uint8{0, 100}, first.U8)
}

func TestRunningAverageInputIsNotModified(t *testing.T) {
	ctx := context.Background()
	g := frame.Geometry{Width: 2, Height: 2, Channels: 1, Depth: frame.DepthU8}
	a := newAverage(t, 0.5)
	_, err := a.Process(ctx, filled(t, g, 0))
	require.NoError(t, err)

	in := filled(t, g, 100)
	_, err = a.Process(ctx, in)
	require.NoError(t, err)
	require.Equal(t, []uint8{100, 100, 100, 100}, in.U8)
}

func TestRunningAverageErrors(t *testing.T) {
	ctx := context.Background()
	a := newAverage(t, 0.1)

	_, err := a.Process(ctx, &frame.Frame{
		Geometry: frame.Geometry{Width: 1, Height: 1, Channels: 1, Depth: frame.Depth(42)},
	})
	require.ErrorAs(t, err, &ErrUnsupportedDepth{})

	_, err = a.Process(ctx, &frame.Frame{
		Geometry: frame.Geometry{Width: 2, Height: 2, Channels: 1, Depth: frame.DepthU8},
		U8:       []uint8{1, 2, 3},
	})
	require.ErrorAs(t, err, &frame.ErrInvalidGeometry{})

	_, err = a.Process(ctx, nil)
	require.Error(t, err)

	_, err = a.Process(ctx, &frame.Frame{
		Geometry: frame.Geometry{Width: 1 << 31, Height: 1 << 31, Channels: 4, Depth: frame.DepthU8},
	})
	require.ErrorAs(t, err, &frame.ErrInvalidGeometry{})

	_, ok := a.Geometry(ctx)
	require.False(t, ok)
}

func TestWeight(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		a, err := New(DefaultConfig())
		require.NoError(t, err)
		require.Equal(t, 0.1, a.Weight(ctx))
	})

	t.Run("invalid-config", func(t *testing.T) {
		_, err := New(Config{Weight: 2})
		require.ErrorAs(t, err, &ErrInvalidWeight{})
	})

	t.Run("range", func(t *testing.T) {
		a := newAverage(t, 0.3)
		var notified []float64
		a.OnWeightChange(ctx, func(ctx context.Context, w float64) {
			notified = append(notified, w)
		})

		require.False(t, a.SetWeight(ctx, -0.1))
		require.False(t, a.SetWeight(ctx, 1.1))
		require.Equal(t, 0.3, a.Weight(ctx))
		require.Empty(t, notified)

		require.True(t, a.SetWeight(ctx, 0))
		require.True(t, a.SetWeight(ctx, 1))
		require.True(t, a.SetWeight(ctx, 0.7))
		require.Equal(t, 0.7, a.Weight(ctx))
		require.Equal(t, []float64{0, 1, 0.7}, notified)
	})

	t.Run("unsubscribe", func(t *testing.T) {
		a := newAverage(t, 0.3)
		calls := 0
		unsubscribe := a.OnWeightChange(ctx, func(ctx context.Context, w float64) { calls++ })
		a.SetWeight(ctx, 0.4)
		unsubscribe()
		a.SetWeight(ctx, 0.5)
		require.Equal(t, 1, calls)
	})

	t.Run("rejected", func(t *testing.T) {
		a := newAverage(t, 0.3)
		var rejected []float64
		a.OnWeightRejected(ctx, func(ctx context.Context, w float64) {
			rejected = append(rejected, w)
		})

		require.False(t, a.SetWeight(ctx, 1.5))
		require.True(t, a.SetWeight(ctx, 0.6))
		require.False(t, a.SetWeight(ctx, -1))
		require.Equal(t, []float64{0.3, 0.6}, rejected)
	})

	t.Run("concurrent-notifications-are-ordered", func(t *testing.T) {
		a := newAverage(t, 0.3)
		var (
			last       float64
			mismatches int
		)
		a.OnWeightChange(ctx, func(ctx context.Context, w float64) {
			last = w
			if a.Weight(ctx) != w {
				mismatches++
			}
		})

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					a.SetWeight(ctx, float64((g*50+i)%101)/100)
				}
			}(g)
		}
		wg.Wait()
		require.Zero(t, mismatches)
		require.Equal(t, a.Weight(ctx), last)
	})

	t.Run("concurrent-with-process", func(t *testing.T) {
		a := newAverage(t, 0.3)
		g := frame.Geometry{Width: 8, Height: 8, Channels: 1, Depth: frame.DepthU8}
		in := filled(t, g, 42)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i <= 100; i++ {
				a.SetWeight(ctx, float64(i)/100)
				_ = a.Weight(ctx)
			}
		}()
		for i := 0; i < 100; i++ {
			out, err := a.Process(ctx, in)
			require.NoError(t, err)
			require.Equal(t, in.U8, out.U8)
			frame.Pool.Put(out)
		}
		wg.Wait()
		require.Equal(t, 1.0, a.Weight(ctx))
	})
}
