package standardize

import (
	"context"
	"regexp"

	"github.com/wdm0006/surveyframe/pkg/frame"
)

type RegexReplace struct {
	Column  string
	Pattern string
	Replace string
	re      *regexp.Regexp
}

func (t *RegexReplace) Name() string { return "regex_replace" }

func (t *RegexReplace) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if t.re == nil {
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return nil, err
		}
		t.re = re
	}
	return mapStrings(f, t.Column, func(s string) string {
		return t.re.ReplaceAllString(s, t.Replace)
	})
}
