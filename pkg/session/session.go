// Package session owns the current primary table. Every stage runs on an
// immutable snapshot of it and replaces it wholesale only when the stage
// succeeds; the new table is then written to the configured snapshot sinks.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wdm0006/surveyframe/pkg/frame"
	"github.com/wdm0006/surveyframe/pkg/header"
	"github.com/wdm0006/surveyframe/pkg/merge"
	"github.com/wdm0006/surveyframe/pkg/transform/dedup"
	"github.com/wdm0006/surveyframe/pkg/transform/flatten"
	"github.com/wdm0006/surveyframe/pkg/transform/temporal"
)

var (
	// ErrNoTable is returned by stages that need a primary table before one
	// has been loaded.
	ErrNoTable = errors.New("no primary table loaded")
	// ErrNoSecondary is returned by Merge before a secondary table is
	// attached.
	ErrNoSecondary = errors.New("no secondary table attached")
)

// Snapshot describes the table version currently held by a session.
type Snapshot struct {
	ID    uuid.UUID
	Stage string
	Rows  int
	Cols  int
	Taken time.Time
}

type Options struct {
	Logger *zap.Logger
	// Sink receives a copy of the table after every successful stage.
	Sink frame.Sink
	// Ingest controls how raw records become the first table.
	Ingest frame.IngestOptions
	// Classifier picks the temporal columns offered by Temporal.
	Classifier temporal.Classifier
}

type Session struct {
	mu        sync.RWMutex
	log       *zap.Logger
	sink      frame.Sink
	ingest    frame.IngestOptions
	classify  temporal.Classifier
	primary   *frame.Frame
	secondary *frame.Frame
	snap      Snapshot
}

func New(opt Options) *Session {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		log:      log,
		sink:     opt.Sink,
		ingest:   opt.Ingest,
		classify: opt.Classifier,
	}
}

// Stages returns the tabularization stages run by Load, in order.
func Stages() []frame.Transform {
	return []frame.Transform{
		flatten.Tabulator{},
		dedup.Scalar{},
	}
}

// Current returns the primary table and its snapshot metadata. The frame is
// immutable and stays valid after later stages replace it.
func (s *Session) Current() (*frame.Frame, Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primary, s.snap
}

// Secondary returns the attached secondary table, or nil.
func (s *Session) Secondary() *frame.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secondary
}

// Load builds a fresh primary table from raw records and runs the
// tabularization stages on it. The table is installed only when every stage
// succeeds.
func (s *Session) Load(ctx context.Context, records []*frame.Object) error {
	f, err := frame.FromRecords(records, s.ingest)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	out, err := frame.NewPipeline(Stages()...).Run(ctx, f)
	if err != nil {
		s.log.Warn("load failed", zap.Int("records", len(records)), zap.Error(err))
		return fmt.Errorf("load: %w", err)
	}
	return s.Replace("load", out)
}

// Replace installs f as the primary table under the given stage name.
func (s *Session) Replace(stage string, f *frame.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(stage, f)
}

// Run applies steps one at a time. A step that fails leaves the table as the
// previous step produced it and stops the run.
func (s *Session) Run(ctx context.Context, steps ...frame.Transform) error {
	for _, t := range steps {
		if err := s.apply(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) apply(ctx context.Context, t frame.Transform) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.primary == nil {
		return fmt.Errorf("%s: %w", t.Name(), ErrNoTable)
	}
	next, err := t.Apply(ctx, s.primary)
	if err != nil {
		s.log.Warn("stage failed", zap.String("stage", t.Name()), zap.Error(err))
		return fmt.Errorf("%s: %w", t.Name(), err)
	}
	if next == s.primary {
		s.log.Debug("stage unchanged", zap.String("stage", t.Name()))
		return nil
	}
	return s.commit(t.Name(), next)
}

// AttachSecondary installs an uploaded table for later merges. Its headers
// are sanitized and made unique first. Duplicate rows of the primary table
// are removed at the same time.
func (s *Session) AttachSecondary(ctx context.Context, f *frame.Frame) error {
	cols := header.Unique(header.SanitizeAll(f.Columns()))
	rows := make([][]frame.Value, f.Rows())
	for r := range rows {
		rows[r] = f.RowValues(r)
	}
	clean, err := frame.New(cols, rows)
	if err != nil {
		return fmt.Errorf("attach: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.primary != nil {
		out, err := dedup.Scalar{}.Apply(ctx, s.primary)
		if err != nil {
			return fmt.Errorf("attach: %w", err)
		}
		if out != s.primary {
			if err := s.commit("dedup", out); err != nil {
				return fmt.Errorf("attach: %w", err)
			}
		}
	}
	s.secondary = clean
	s.log.Info("secondary attached", zap.Int("rows", clean.Rows()), zap.Strings("columns", cols))
	return nil
}

// Merge left-joins the secondary table onto the primary one. On error the
// primary table is unchanged.
func (s *Session) Merge(ctx context.Context, m merge.Merger) (*merge.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.primary == nil {
		return nil, fmt.Errorf("merge: %w", ErrNoTable)
	}
	if s.secondary == nil {
		return nil, fmt.Errorf("merge: %w", ErrNoSecondary)
	}
	res, err := m.Merge(s.primary, s.secondary)
	if err != nil {
		s.log.Warn("merge failed", zap.Error(err))
		return nil, err
	}
	if len(res.Dropped) > 0 {
		s.log.Info("import columns not found", zap.Strings("dropped", res.Dropped))
	}
	if err := s.commit("merge", res.Frame); err != nil {
		return nil, err
	}
	s.log.Info("merged",
		zap.String("key", res.KeyB),
		zap.Strings("imported", res.Imported),
		zap.Int("matched", res.Matched))
	return res, nil
}

// Temporal lists the primary table's temporal columns.
func (s *Session) Temporal() []string {
	f, _ := s.Current()
	if f == nil {
		return nil
	}
	return s.classify.Classify(f)
}

// Close closes the snapshot sink.
func (s *Session) Close() error {
	if s.sink == nil {
		return nil
	}
	return s.sink.Close()
}

// commit writes the snapshot and then installs f. A failed write leaves the
// current table in place. Must be called with s.mu held.
func (s *Session) commit(stage string, f *frame.Frame) error {
	snap := Snapshot{
		ID:    uuid.New(),
		Stage: stage,
		Rows:  f.Rows(),
		Cols:  f.Cols(),
		Taken: time.Now(),
	}
	fields := []zap.Field{
		zap.String("stage", stage),
		zap.Stringer("snapshot", snap.ID),
		zap.Int("rows", f.Rows()),
		zap.Int("cols", f.Cols()),
	}
	if s.sink != nil {
		if err := s.sink.Write(f); err != nil {
			s.log.Error("snapshot failed", append(fields, zap.Error(err))...)
			return fmt.Errorf("%s: snapshot: %w", stage, err)
		}
	}
	s.primary, s.snap = f, snap
	s.log.Info("table replaced", fields...)
	return nil
}
