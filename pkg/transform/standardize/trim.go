package standardize

import (
	"context"
	"strings"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

type Trim struct{ Column string }

func (t *Trim) Name() string { return "trim" }

func (t *Trim) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return mapStrings(f, t.Column, strings.TrimSpace)
}
