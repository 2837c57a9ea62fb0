package stream

import (
	"github.com/iotaledger/hive.go/ierrors"
)

var (
	// ErrEnded gets returned if a source ends before the requested amount of bytes could be read.
	ErrEnded = ierrors.New("source ended")
	// ErrInvalidLength gets returned if a negative amount of bytes is requested.
	ErrInvalidLength = ierrors.New("invalid read length")
	// ErrRemainderUnsupported gets returned if a source can not read up to its end.
	ErrRemainderUnsupported = ierrors.New("source does not support reading the remaining bytes")
	// ErrConcurrentRead gets returned if a read is issued while another read of the same source is still pending.
	ErrConcurrentRead = ierrors.New("concurrent read on source")
	// ErrClosed gets returned if a closed source is read.
	ErrClosed = ierrors.New("source closed")
	// ErrBufferTooSmall gets returned if an output region can not hold the data that should be written into it.
	ErrBufferTooSmall = ierrors.New("buffer too small")
	// ErrOutOfRange gets returned if a write exceeds the bounds of a View.
	ErrOutOfRange = ierrors.New("write out of range")
)
