package stream

import (
	"io"
	"sync"

	"go.uber.org/atomic"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/wirestruct/deferred"
)

// AsyncReader is an asynchronous Source on top of an io.Reader.
//
// Bytes are pulled from the io.Reader by a background goroutine only while a read is waiting for them. Reads that can
// be served from already received bytes are immediate, all other reads are pending until enough bytes arrived. Pending
// reads are completed on the background goroutine, so continuations of a pending read run there as well.
type AsyncReader struct {
	// reader is the underlying io.Reader.
	reader io.Reader

	// optsChunkSize is the size of the chunks that are requested from the io.Reader.
	optsChunkSize int

	// buffer contains the received but not yet consumed bytes.
	buffer []byte

	// waiter is the read that waits for more bytes (if any).
	waiter *asyncRead

	// ended is set once the io.Reader returned an error.
	ended bool

	// readErr is the error of the io.Reader if it was not io.EOF.
	readErr error

	// closed is set once Close was called.
	closed bool

	// position is the amount of consumed bytes.
	position atomic.Int64

	// demand signals the background goroutine that a read waits for bytes.
	demand chan struct{}

	// shutdown is closed by Close to stop the background goroutine.
	shutdown chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	mutex     sync.Mutex
}

// asyncRead is a pending read of an AsyncReader.
type asyncRead struct {
	// length is the amount of requested bytes or -1 for all bytes until the end.
	length int

	future *deferred.Future[[]byte]
}

// NewAsyncReader creates an AsyncReader that consumes the given io.Reader.
func NewAsyncReader(reader io.Reader, opts ...options.Option[AsyncReader]) *AsyncReader {
	return options.Apply(&AsyncReader{
		reader:        reader,
		optsChunkSize: 4096,
		demand:        make(chan struct{}, 1),
		shutdown:      make(chan struct{}),
	}, opts)
}

// Position returns the amount of bytes consumed so far.
func (r *AsyncReader) Position() int {
	return int(r.position.Load())
}

// ReadExactly reads length bytes.
func (r *AsyncReader) ReadExactly(length int) deferred.Value[[]byte] {
	if length < 0 {
		return deferred.Failed[[]byte](ierrors.Wrapf(ErrInvalidLength, "length %d", length))
	}

	return r.read(length)
}

// ReadRemaining reads all bytes until the io.Reader ends.
func (r *AsyncReader) ReadRemaining() deferred.Value[[]byte] {
	return r.read(-1)
}

// Close stops the background goroutine, fails a waiting read with ErrClosed and closes the io.Reader if it is an
// io.Closer.
func (r *AsyncReader) Close() (err error) {
	r.closeOnce.Do(func() {
		r.mutex.Lock()
		r.closed = true
		waiter := r.waiter
		r.waiter = nil
		r.mutex.Unlock()

		if waiter != nil {
			waiter.future.Reject(ErrClosed)
		}

		close(r.shutdown)

		if closer, isCloser := r.reader.(io.Closer); isCloser {
			err = closer.Close()
		}
	})

	return err
}

func (r *AsyncReader) read(length int) deferred.Value[[]byte] {
	r.mutex.Lock()

	switch {
	case r.closed:
		r.mutex.Unlock()

		return deferred.Failed[[]byte](ErrClosed)
	case r.waiter != nil:
		r.mutex.Unlock()

		return deferred.Failed[[]byte](ErrConcurrentRead)
	case length >= 0 && len(r.buffer) >= length:
		data := r.take(length)
		r.mutex.Unlock()

		return deferred.Immediate(data)
	case r.ended:
		data, err := r.drain(length)
		r.mutex.Unlock()

		return deferred.Of(data, err)
	}

	waiter := &asyncRead{length: length, future: deferred.NewFuture[[]byte]()}
	r.waiter = waiter
	r.mutex.Unlock()

	r.startOnce.Do(func() { go r.pump() })

	select {
	case r.demand <- struct{}{}:
	default:
	}

	return deferred.Pending(waiter.future)
}

// pump fills the buffer whenever a read waits for bytes.
func (r *AsyncReader) pump() {
	chunk := make([]byte, r.optsChunkSize)

	for {
		select {
		case <-r.shutdown:
			return
		case <-r.demand:
		}

		if r.fill(chunk) {
			return
		}
	}
}

// fill reads from the io.Reader until the waiting read is settled. It returns true if the io.Reader ended.
func (r *AsyncReader) fill(chunk []byte) (ended bool) {
	for {
		n, err := r.reader.Read(chunk)

		settle, ended, idle := func() (settle func(), ended bool, idle bool) {
			r.mutex.Lock()
			defer r.mutex.Unlock()

			r.buffer = append(r.buffer, chunk[:n]...)
			if err != nil {
				r.ended = true
				if !ierrors.Is(err, io.EOF) {
					r.readErr = err
				}
			}

			return r.settle(), r.ended, r.waiter == nil
		}()

		settle()

		if ended {
			return true
		}

		if idle {
			return false
		}
	}
}

// settle completes the waiting read if possible. The returned function must be called without holding the mutex.
func (r *AsyncReader) settle() func() {
	waiter := r.waiter
	if waiter == nil || r.closed {
		return func() {}
	}

	switch {
	case waiter.length >= 0 && len(r.buffer) >= waiter.length:
		r.waiter = nil
		data := r.take(waiter.length)

		return func() { waiter.future.Resolve(data) }
	case r.ended:
		r.waiter = nil
		data, err := r.drain(waiter.length)

		return func() { waiter.future.Complete(data, err) }
	default:
		return func() {}
	}
}

// drain settles a read of an ended io.Reader.
func (r *AsyncReader) drain(length int) ([]byte, error) {
	if r.readErr != nil {
		return nil, ierrors.Wrap(r.readErr, "failed to read from source")
	}

	available := len(r.buffer)
	data := r.take(available)
	if length < 0 {
		return data, nil
	}

	return nil, ierrors.Wrapf(ErrEnded, "read bytes (%d) != size (%d)", available, length)
}

// take consumes length bytes of the buffer.
func (r *AsyncReader) take(length int) []byte {
	data := make([]byte, length)
	copy(data, r.buffer)
	r.buffer = r.buffer[length:]
	r.position.Add(int64(length))

	return data
}

// WithChunkSize sets the size of the chunks that are requested from the io.Reader.
func WithChunkSize(chunkSize int) options.Option[AsyncReader] {
	return func(r *AsyncReader) {
		if chunkSize > 0 {
			r.optsChunkSize = chunkSize
		}
	}
}
