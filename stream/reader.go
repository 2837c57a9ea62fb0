package stream

import (
	"io"

	"github.com/iotaledger/hive.go/ierrors"
)

// Reader is a synchronous ExactReader on top of an io.Reader. Every read blocks until the requested bytes arrived or
// the io.Reader ended.
type Reader struct {
	reader    io.Reader
	bytesRead int
}

// NewReader creates a Reader that consumes the given io.Reader.
func NewReader(reader io.Reader) *Reader {
	return &Reader{reader: reader}
}

// Position returns the amount of bytes consumed so far.
func (r *Reader) Position() int {
	return r.bytesRead
}

// ReadExactly reads length bytes. If the io.Reader ends early, the bytes read so far are consumed and an error
// wrapping ErrEnded is returned.
func (r *Reader) ReadExactly(length int) ([]byte, error) {
	counter := &countingReader{reader: r.reader}
	defer func() { r.bytesRead += counter.count }()

	return readFull(counter, length)
}

// ReadRemaining reads until the io.Reader ends.
func (r *Reader) ReadRemaining() ([]byte, error) {
	readBytes, err := io.ReadAll(r.reader)
	r.bytesRead += len(readBytes)
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to read remaining bytes")
	}

	return readBytes, nil
}

type countingReader struct {
	reader io.Reader
	count  int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.count += n

	return n, err
}
