package standardize

import (
	"context"
	"strings"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

type Lower struct{ Column string }

func (t *Lower) Name() string { return "lower" }

func (t *Lower) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return mapStrings(f, t.Column, strings.ToLower)
}
