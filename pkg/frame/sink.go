package frame

import "errors"

// Sink persists frame snapshots. Each Write replaces the previous snapshot.
type Sink interface {
	Write(*Frame) error
	Close() error
}

// MultiSink writes every snapshot to all of its sinks.
type MultiSink []Sink

func (m MultiSink) Write(f *Frame) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
