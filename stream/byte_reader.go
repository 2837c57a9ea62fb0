package stream

import (
	"bytes"
	"io"

	"github.com/iotaledger/hive.go/ierrors"
)

// ByteReader is an in-memory ExactReader.
type ByteReader struct {
	*bytes.Reader
}

func NewByteReader(b []byte) *ByteReader {
	return &ByteReader{
		Reader: bytes.NewReader(b),
	}
}

func (b *ByteReader) BytesRead() int {
	return int(b.Size()) - b.Len()
}

// Position returns the amount of bytes consumed so far.
func (b *ByteReader) Position() int {
	return b.BytesRead()
}

// Remaining returns the amount of bytes that are left.
func (b *ByteReader) Remaining() int {
	return b.Len()
}

// ReadExactly reads length bytes. A short read consumes the rest of the buffer and fails with ErrEnded.
func (b *ByteReader) ReadExactly(length int) ([]byte, error) {
	return readFull(b.Reader, length)
}

// ReadRemaining reads all bytes that are left.
func (b *ByteReader) ReadRemaining() ([]byte, error) {
	return io.ReadAll(b.Reader)
}

// maxPreallocation limits the amount of memory that is reserved before the requested bytes actually arrived.
const maxPreallocation = 64 * 1024

func readFull(reader io.Reader, length int) ([]byte, error) {
	if length < 0 {
		return nil, ierrors.Wrapf(ErrInvalidLength, "length %d", length)
	}

	buffer := bytes.NewBuffer(make([]byte, 0, min(length, maxPreallocation)))
	nBytes, err := io.CopyN(buffer, reader, int64(length))
	if err != nil {
		if ierrors.Is(err, io.EOF) || ierrors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ierrors.Wrapf(ErrEnded, "read bytes (%d) != size (%d)", nBytes, length)
		}

		return nil, ierrors.Wrap(err, "failed to read bytes")
	}

	return buffer.Bytes(), nil
}
