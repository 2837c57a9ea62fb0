// Package sequence reads consecutive records of the same Definition from a source.
package sequence

import (
	"context"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/wirestruct"
	"github.com/iotaledger/hive.go/wirestruct/stream"
)

// ErrNoProgress gets returned if a record did not consume any bytes, which would make the sequence infinite.
var ErrNoProgress = ierrors.New("record did not consume any bytes")

// Scanner reads records until the source is empty at a record boundary. Like a bufio.Scanner, Scan advances to the
// next record and Err reports the error that stopped the scan (nil if the source simply ended).
type Scanner struct {
	definition *wirestruct.Definition
	source     stream.Source
	record     any
	err        error
	count      int
	done       bool

	optsLimit  int
	optsLogger log.Logger
}

// NewScanner creates a Scanner for records of the given Definition.
func NewScanner(definition *wirestruct.Definition, source stream.Source, opts ...options.Option[Scanner]) *Scanner {
	return options.Apply(&Scanner{
		definition: definition,
		source:     source,
		optsLogger: log.EmptyLogger,
	}, opts)
}

// Scan reads the next record. It returns false once the source is empty, an error occurred, the limit was reached or
// the context was canceled.
func (s *Scanner) Scan(ctx context.Context) bool {
	if s.done {
		return false
	}

	if s.optsLimit > 0 && s.count >= s.optsLimit {
		return s.stop(nil)
	}

	start := s.source.Position()
	record, err := s.definition.DeserializeAsync(s.source).Wait(ctx)
	if err != nil {
		if ierrors.Is(err, wirestruct.ErrEmpty) {
			return s.stop(nil)
		}

		return s.stop(ierrors.Wrapf(err, "failed to read record %d", s.count))
	}

	if s.source.Position() == start {
		return s.stop(ierrors.Wrapf(ErrNoProgress, "record %d", s.count))
	}

	s.record = record
	s.count++

	return true
}

// Record returns the record that was read by the last successful Scan.
func (s *Scanner) Record() any {
	return s.record
}

// Err returns the error that stopped the Scanner. It is nil if the source ended at a record boundary.
func (s *Scanner) Err() error {
	return s.err
}

// Count returns the number of records read so far.
func (s *Scanner) Count() int {
	return s.count
}

func (s *Scanner) stop(err error) bool {
	s.done = true
	s.record = nil
	s.err = err

	if err != nil {
		s.optsLogger.LogWarn("stopped scanning records", "count", s.count, "err", err)
	} else {
		s.optsLogger.LogDebug("finished scanning records", "count", s.count)
	}

	return false
}

// Collect reads all records of the source.
func Collect(ctx context.Context, definition *wirestruct.Definition, source stream.Source, opts ...options.Option[Scanner]) ([]any, error) {
	scanner := NewScanner(definition, source, opts...)

	records := make([]any, 0)
	for scanner.Scan(ctx) {
		records = append(records, scanner.Record())
	}

	return records, scanner.Err()
}

// WithLimit stops the Scanner after the given number of records (0 means no limit).
func WithLimit(limit int) options.Option[Scanner] {
	return func(s *Scanner) {
		s.optsLimit = limit
	}
}

// WithLogger sets the logger of the Scanner.
func WithLogger(logger log.Logger) options.Option[Scanner] {
	return func(s *Scanner) {
		if logger != nil {
			s.optsLogger = logger
		}
	}
}
