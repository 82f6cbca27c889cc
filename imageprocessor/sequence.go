package imageprocessor

import (
	"context"
	"fmt"
	"strings"

	"github.com/xaionaro-go/cvfilter/frame"
	"github.com/xaionaro-go/cvfilter/logger"
)

// Sequence runs the processors one after another, feeding each one with
// the output of the previous one.
type Sequence []Abstract

var _ Abstract = (Sequence)(nil)

func (s Sequence) String() string {
	var names []string
	for _, p := range s {
		names = append(names, p.String())
	}
	return "Sequence(" + strings.Join(names, " -> ") + ")"
}

// Process returns a copy of the input if the sequence is empty.
func (s Sequence) Process(
	ctx context.Context,
	input *frame.Frame,
) (_ret *frame.Frame, _err error) {
	logger.Tracef(ctx, "Process(%s)", input)
	defer func() { logger.Tracef(ctx, "/Process(%s): %s %v", input, _ret, _err) }()

	if len(s) == 0 {
		if err := input.Validate(); err != nil {
			return nil, fmt.Errorf("invalid input frame: %w", err)
		}
		return frame.Pool.CloneOf(input)
	}

	cur := input
	for idx, p := range s {
		next, err := p.Process(ctx, cur)
		if cur != input {
			frame.Pool.Put(cur)
		}
		if err != nil {
			return nil, fmt.Errorf("processor #%d (%s) failed: %w", idx, p, err)
		}
		cur = next
	}
	return cur, nil
}
