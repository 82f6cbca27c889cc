// pool.go implements recycling of Frame sample buffers.

package frame

import (
	"github.com/xaionaro-go/cvfilter/pool"
)

type FramePool struct {
	*pool.Pool[Frame]
}

// Pool is the process-wide frame pool. Processors take their outputs from
// it; callers that are done with an output may Put it back.
var Pool = FramePool{
	Pool: pool.NewPool(
		func() *Frame { return &Frame{} },
		func(f *Frame) { f.Geometry = Geometry{} },
	),
}

// Get returns a zeroed frame of the given geometry.
func (p FramePool) Get(g Geometry) (*Frame, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	f := p.Pool.Get()
	f.reshape(g)
	return f, nil
}

// CloneOf returns a pooled copy of src.
func (p FramePool) CloneOf(src *Frame) (*Frame, error) {
	f, err := p.Get(src.Geometry)
	if err != nil {
		return nil, err
	}
	if err := f.CopyFrom(src); err != nil {
		p.Put(f)
		return nil, err
	}
	return f, nil
}
