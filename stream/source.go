package stream

import (
	"github.com/iotaledger/hive.go/wirestruct/deferred"
)

// ExactReader is a synchronous byte source that hands out exactly the requested amount of bytes.
type ExactReader interface {
	// Position returns the amount of bytes consumed so far.
	Position() int

	// ReadExactly reads length bytes. If fewer bytes are left, the available bytes are consumed and an error wrapping
	// ErrEnded is returned.
	ReadExactly(length int) ([]byte, error)
}

// RemainderReader is implemented by ExactReaders that can read everything up to their end.
type RemainderReader interface {
	// ReadRemaining reads all bytes that are left. It never returns ErrEnded.
	ReadRemaining() ([]byte, error)
}

// Source is the byte source contract used by the struct engine. Reads of synchronous sources are always immediate,
// reads of asynchronous sources may be pending.
type Source interface {
	// Position returns the amount of bytes consumed so far.
	Position() int

	// ReadExactly reads length bytes or fails with an error wrapping ErrEnded.
	ReadExactly(length int) deferred.Value[[]byte]

	// ReadRemaining reads all bytes that are left until the source ends.
	ReadRemaining() deferred.Value[[]byte]
}

// Sync turns an ExactReader into a Source whose reads are always immediate.
func Sync(reader ExactReader) Source {
	return &syncSource{reader: reader}
}

type syncSource struct {
	reader ExactReader
}

func (s *syncSource) Position() int {
	return s.reader.Position()
}

func (s *syncSource) ReadExactly(length int) deferred.Value[[]byte] {
	return deferred.Of(s.reader.ReadExactly(length))
}

func (s *syncSource) ReadRemaining() deferred.Value[[]byte] {
	remainderReader, ok := s.reader.(RemainderReader)
	if !ok {
		return deferred.Failed[[]byte](ErrRemainderUnsupported)
	}

	return deferred.Of(remainderReader.ReadRemaining())
}
