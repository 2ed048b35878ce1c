package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"github.com/wdm0006/surveyframe/pkg/frame"
	"github.com/wdm0006/surveyframe/pkg/merge"
	"github.com/wdm0006/surveyframe/pkg/transform/dedup"
	"github.com/wdm0006/surveyframe/pkg/transform/filter"
	std "github.com/wdm0006/surveyframe/pkg/transform/standardize"
	"github.com/wdm0006/surveyframe/pkg/transform/temporal"
)

type Config struct {
	Input struct {
		Path        string   `json:"path"`
		Envelope    string   `json:"envelope"`     // default "results"
		AnyEnvelope bool     `json:"any_envelope"` // fall back to the first array-of-objects field
		Drop        []string `json:"drop"`         // extra fields to strip on ingest
	} `json:"input"`
	// Upload is the table merged into the submissions (csv, tsv or xlsx).
	Upload struct {
		Path      string `json:"path"`
		Sheet     string `json:"sheet"`
		Delimiter string `json:"delimiter"`
	} `json:"upload"`
	Merge *struct {
		KeyA   string   `json:"key_a"`
		KeyB   string   `json:"key_b"`
		Import []string `json:"import"`
	} `json:"merge"`
	// Snapshots lists files rewritten after every successful stage; the
	// format follows the extension.
	Snapshots []string `json:"snapshots"`
	Output    struct {
		Path    string   `json:"path"`
		Columns []string `json:"columns"` // subset to export, in order
	} `json:"output"`
	Steps     []json.RawMessage `json:"steps"`
	PostMerge []json.RawMessage `json:"post_merge"` // run after the merge
	Temporal  struct {
		MaxInvalidRatio float64 `json:"max_invalid_ratio"`
	} `json:"temporal"`
}

// loadConfig reads a JSON, YAML or TOML config chosen by extension.
func loadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeConfig(b, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// decodeConfig decodes YAML and TOML into generic data first and re-encodes
// it as JSON, so steps keep a single decoding path.
func decodeConfig(b []byte, format string) (*Config, error) {
	var generic map[string]any
	switch format {
	case "", "json":
	case "yaml", "yml":
		if err := yaml.Unmarshal(b, &generic); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(b, &generic); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported format %q", format)
	}
	if generic != nil {
		var err error
		if b, err = json.Marshal(generic); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Input.Path == "" {
		return nil, fmt.Errorf("config: input.path is required")
	}
	if cfg.Merge != nil && cfg.Upload.Path == "" {
		return nil, fmt.Errorf("config: merge needs upload.path")
	}
	return &cfg, nil
}

type columnArgs struct {
	Column string `json:"column"`
}

// buildSteps turns single-key step objects into transforms. Unknown steps
// are skipped with a warning.
func buildSteps(raw []json.RawMessage, log *zap.Logger) ([]frame.Transform, error) {
	var out []frame.Transform
	for i, r := range raw {
		// detect each step by its single key
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(r, &probe); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		for k, v := range probe {
			t, err := buildStep(k, v)
			if err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i, k, err)
			}
			if t == nil {
				log.Warn("unknown step ignored", zap.String("step", k))
				continue
			}
			out = append(out, t)
		}
	}
	return out, nil
}

func buildStep(k string, v json.RawMessage) (frame.Transform, error) {
	switch k {
	case "trim":
		var s columnArgs
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &std.Trim{Column: s.Column}, nil
	case "lower":
		var s columnArgs
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &std.Lower{Column: s.Column}, nil
	case "regex_replace":
		var s struct {
			Column  string `json:"column"`
			Pattern string `json:"pattern"`
			Replace string `json:"replace"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &std.RegexReplace{Column: s.Column, Pattern: s.Pattern, Replace: s.Replace}, nil
	case "map_values":
		var s struct {
			Column string            `json:"column"`
			Map    map[string]string `json:"map"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &std.MapValues{Column: s.Column, Map: s.Map}, nil
	case "filter_in":
		var s struct {
			Column   string   `json:"column"`
			Values   []string `json:"values"`
			KeepNull bool     `json:"keep_null"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		t := filter.NewInSet(s.Column, s.Values)
		t.KeepNull = s.KeepNull
		return t, nil
	case "coerce_time":
		var s columnArgs
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return &temporal.CoerceColumn{Column: s.Column}, nil
	case "date_range":
		var s struct {
			Column string `json:"column"`
			From   string `json:"from"`
			To     string `json:"to"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		from, err := dateBound(s.From, false)
		if err != nil {
			return nil, err
		}
		to, err := dateBound(s.To, true)
		if err != nil {
			return nil, err
		}
		return &temporal.Range{Column: s.Column, From: from, To: to}, nil
	case "dedup":
		return dedup.Scalar{}, nil
	case "select":
		var s struct {
			Columns []string `json:"columns"`
		}
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return frame.TransformFunc{Label: "select", Fn: selectColumns(s.Columns)}, nil
	}
	return nil, nil
}

// dateBound parses a range bound. A bare date used as an end bound covers the
// whole day.
func dateBound(s string, end bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	ts, ok := temporal.Coerce(frame.String(s))
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	if _, err := time.Parse(temporal.DateLayout, s); end && err == nil {
		ts = ts.Add(24*time.Hour - time.Nanosecond)
	}
	return ts, nil
}

func mergerFrom(cfg *Config) merge.Merger {
	return merge.Merger{KeyA: cfg.Merge.KeyA, KeyB: cfg.Merge.KeyB, Import: cfg.Merge.Import}
}
