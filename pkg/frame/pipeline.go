package frame

import (
	"context"
	"fmt"
)

// Transform is a table-in, table-out stage. Implementations must not modify
// their input; they return the input itself when there is nothing to do.
type Transform interface {
	Name() string
	Apply(ctx context.Context, f *Frame) (*Frame, error)
}

// TransformFunc adapts a plain function to the Transform interface.
type TransformFunc struct {
	Label string
	Fn    func(ctx context.Context, f *Frame) (*Frame, error)
}

func (t TransformFunc) Name() string { return t.Label }
func (t TransformFunc) Apply(ctx context.Context, f *Frame) (*Frame, error) {
	return t.Fn(ctx, f)
}

// Pipeline composes a sequence of Transforms.
type Pipeline struct {
	steps []Transform
}

func NewPipeline(steps ...Transform) *Pipeline { return &Pipeline{steps: steps} }

func (p *Pipeline) Add(t Transform) *Pipeline {
	p.steps = append(p.steps, t)
	return p
}

func (p *Pipeline) Len() int { return len(p.steps) }

// Names lists the step names in order.
func (p *Pipeline) Names() []string {
	out := make([]string, len(p.steps))
	for i, t := range p.steps {
		out[i] = t.Name()
	}
	return out
}

// Run applies every step in order. On error the partially transformed frame
// is discarded and the caller keeps its input.
func (p *Pipeline) Run(ctx context.Context, f *Frame) (*Frame, error) {
	cur := f
	for _, t := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := t.Apply(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
