package stream_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/wirestruct/stream"
)

func waitBytes(t *testing.T, source stream.Source, length int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return source.ReadExactly(length).ResolveAsync().Wait(ctx)
}

func TestAsyncReaderPendingRead(t *testing.T) {
	pipeReader, pipeWriter := io.Pipe()
	reader := stream.NewAsyncReader(pipeReader)
	defer reader.Close()

	value := reader.ReadExactly(4)
	require.True(t, value.IsPending())

	go func() {
		_, _ = pipeWriter.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	readBytes, err := value.ResolveAsync().Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, readBytes)
	require.Equal(t, 4, reader.Position())

	buffered := reader.ReadExactly(4)
	require.False(t, buffered.IsPending())

	readBytes, err = buffered.ResolveSync()
	require.NoError(t, err)
	require.Equal(t, []byte{5, 6, 7, 8}, readBytes)
	require.Equal(t, 8, reader.Position())
}

func TestAsyncReaderAssemblesChunks(t *testing.T) {
	pipeReader, pipeWriter := io.Pipe()
	reader := stream.NewAsyncReader(pipeReader, stream.WithChunkSize(2))
	defer reader.Close()

	go func() {
		_, _ = pipeWriter.Write([]byte{1, 2, 3})
		_, _ = pipeWriter.Write([]byte{4, 5})
	}()

	readBytes, err := waitBytes(t, reader, 5)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4, 5}, readBytes)
}

func TestAsyncReaderEnded(t *testing.T) {
	pipeReader, pipeWriter := io.Pipe()
	reader := stream.NewAsyncReader(pipeReader)
	defer reader.Close()

	go func() {
		_, _ = pipeWriter.Write([]byte{1, 2})
		_ = pipeWriter.Close()
	}()

	_, err := waitBytes(t, reader, 4)
	require.ErrorIs(t, err, stream.ErrEnded)
	require.Equal(t, 2, reader.Position())

	_, err = reader.ReadExactly(1).ResolveSync()
	require.ErrorIs(t, err, stream.ErrEnded)
}

func TestAsyncReaderReadRemaining(t *testing.T) {
	pipeReader, pipeWriter := io.Pipe()
	reader := stream.NewAsyncReader(pipeReader, stream.WithChunkSize(1))
	defer reader.Close()

	go func() {
		_, _ = pipeWriter.Write([]byte("abc"))
		_ = pipeWriter.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	remaining, err := reader.ReadRemaining().ResolveAsync().Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), remaining)
	require.Equal(t, 3, reader.Position())
}

func TestAsyncReaderConcurrentRead(t *testing.T) {
	pipeReader, _ := io.Pipe()
	reader := stream.NewAsyncReader(pipeReader)

	first := reader.ReadExactly(4)
	require.True(t, first.IsPending())

	_, err := reader.ReadExactly(1).ResolveSync()
	require.ErrorIs(t, err, stream.ErrConcurrentRead)

	require.NoError(t, reader.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = first.ResolveAsync().Wait(ctx)
	require.ErrorIs(t, err, stream.ErrClosed)

	_, err = reader.ReadExactly(1).ResolveSync()
	require.ErrorIs(t, err, stream.ErrClosed)
}
