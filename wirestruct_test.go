package wirestruct_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/wirestruct"
	"github.com/iotaledger/hive.go/wirestruct/codec"
	"github.com/iotaledger/hive.go/wirestruct/deferred"
	"github.com/iotaledger/hive.go/wirestruct/field"
	"github.com/iotaledger/hive.go/wirestruct/stream"
)

func packetDefinition(opts ...options.Option[wirestruct.Definition]) *wirestruct.Definition {
	return wirestruct.New(opts...).
		Uint8("kind").
		Uint32("length").
		Bytes("payload", field.LengthFrom("length"))
}

func deserializeRecord(t *testing.T, definition *wirestruct.Definition, data []byte) *wirestruct.Record {
	record, err := wirestruct.DeserializeAs[*wirestruct.Record](definition, stream.NewByteReader(data))
	require.NoError(t, err)

	return record
}

func TestPacketLayout(t *testing.T) {
	definition := packetDefinition()

	serialized, err := definition.Serialize(wirestruct.Init{
		"kind":    1,
		"payload": []byte{0xaa, 0xbb, 0xcc},
	})
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x00, 0x00, 0x00, 0x03, 0xaa, 0xbb, 0xcc}, serialized)

	record := deserializeRecord(t, definition, serialized)
	require.Equal(t, wirestruct.Init{
		"kind":    uint8(1),
		"length":  uint32(3),
		"payload": []byte{0xaa, 0xbb, 0xcc},
	}, record.Fields())
	require.Equal(t, len(serialized), record.Size())
}

func TestLittleEndian(t *testing.T) {
	definition := packetDefinition(wirestruct.WithByteOrder(binary.LittleEndian))

	serialized, err := definition.Serialize(wirestruct.Init{"kind": 1, "payload": []byte{0xaa, 0xbb, 0xcc}})
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0xaa, 0xbb, 0xcc}, serialized)

	length, exists := deserializeRecord(t, definition, serialized).Get("length")
	require.True(t, exists)
	require.Equal(t, uint32(3), length)
}

func TestScalarRoundTrip(t *testing.T) {
	definition := wirestruct.New().
		Int8("i8").
		Uint8("u8").
		Int16("i16").
		Uint16("u16").
		Int32("i32").
		Uint32("u32").
		Int64("i64").
		Uint64("u64")

	require.Equal(t, 30, definition.Size())
	require.Equal(t, 8, definition.Len())

	init := wirestruct.Init{
		"i8":  int8(math.MinInt8),
		"u8":  uint8(math.MaxUint8),
		"i16": int16(math.MinInt16),
		"u16": uint16(math.MaxUint16),
		"i32": int32(math.MinInt32),
		"u32": uint32(math.MaxUint32),
		"i64": int64(math.MinInt64),
		"u64": uint64(math.MaxUint64),
	}

	serialized, err := definition.Serialize(init)
	require.NoError(t, err)
	require.Len(t, serialized, definition.Size())

	reader := stream.NewByteReader(serialized)
	record, err := wirestruct.DeserializeAs[*wirestruct.Record](definition, reader)
	require.NoError(t, err)
	require.Equal(t, init, record.Fields())
	require.Equal(t, len(serialized), reader.Position())
}

func TestBufferRoundTrip(t *testing.T) {
	definition := wirestruct.New(wirestruct.WithTextCodec(codec.UTF16LE)).
		Uint8("count").
		Bytes("id", field.Fixed(4)).
		Uint16("nameLength").
		Text("name", field.LengthFrom("nameLength")).
		Bytes("pairs", field.LengthFunc(func(values field.Values) (int, error) {
			count, err := field.Int(values, "count")

			return 2 * count, err
		})).
		Text("comment", field.Remainder())

	require.Equal(t, 1+4+2, definition.Size())

	init := wirestruct.Init{
		"count":   2,
		"id":      []byte{1, 2, 3, 4},
		"name":    "héllo",
		"pairs":   []byte{5, 6, 7, 8},
		"comment": "ok",
	}

	size, err := definition.SizeOf(init)
	require.NoError(t, err)
	require.Equal(t, 1+4+2+10+4+4, size)

	serialized, err := definition.Serialize(init)
	require.NoError(t, err)
	require.Len(t, serialized, size)

	reader := stream.NewByteReader(serialized)
	record, err := wirestruct.DeserializeAs[*wirestruct.Record](definition, reader)
	require.NoError(t, err)
	require.Equal(t, size, reader.Position())
	require.Equal(t, wirestruct.Init{
		"count":      uint8(2),
		"id":         []byte{1, 2, 3, 4},
		"nameLength": uint16(10),
		"name":       "héllo",
		"pairs":      []byte{5, 6, 7, 8},
		"comment":    "ok",
	}, record.Fields())
}

func TestDuplicateFields(t *testing.T) {
	definition := wirestruct.New().Uint8("x")

	require.ErrorIs(t, definition.AppendField("x", field.Uint16), wirestruct.ErrDuplicateField)
	require.PanicsWithError(t, definition.AppendField("x", field.Uint16).Error(), func() {
		definition.Uint16("x")
	})

	require.NoError(t, definition.AddExtra(map[string]any{"version": 1}))
	require.ErrorIs(t, definition.AppendField("version", field.Uint8), wirestruct.ErrDuplicateField)
	require.ErrorIs(t, definition.AddExtra(map[string]any{"x": 1}), wirestruct.ErrDuplicateField)
}

func TestMergeFields(t *testing.T) {
	header := wirestruct.New().Uint8("kind").Uint32("length")
	packet := wirestruct.New().
		Fields(header).
		Bytes("payload", field.LengthFrom("length"))

	require.Equal(t, []string{"kind", "length", "payload"}, packet.FieldNames())
	require.Equal(t, 5, packet.Size())

	a := wirestruct.New().Uint8("x").Uint8("y")
	b := wirestruct.New().Uint16("y").Uint16("z").Extra(map[string]any{"extra": true})

	err := a.MergeFields(b)
	require.ErrorIs(t, err, wirestruct.ErrDuplicateField)
	require.Contains(t, err.Error(), "'y'")
	require.Equal(t, []string{"x", "y"}, a.FieldNames())
	require.Equal(t, 2, a.Size())
	require.Empty(t, a.ExtraNames())

	c := wirestruct.New().Uint16("z").Extra(map[string]any{"extra": true})
	require.NoError(t, a.MergeFields(c))
	require.Equal(t, []string{"x", "y", "z"}, a.FieldNames())
	require.Equal(t, 4, a.Size())
	require.Equal(t, []string{"extra"}, a.ExtraNames())
}

func TestInvalidDefinitions(t *testing.T) {
	require.ErrorIs(t, wirestruct.New().AppendField("payload", field.Bytes(field.LengthFrom("length"))), wirestruct.ErrInvalidDefinition)
	require.ErrorIs(t, wirestruct.New().Text("length", field.Fixed(1)).AppendField("payload", field.Bytes(field.LengthFrom("length"))), wirestruct.ErrInvalidDefinition)
	require.ErrorIs(t, wirestruct.New().AppendField("", field.Uint8), wirestruct.ErrInvalidDefinition)
	require.ErrorIs(t, wirestruct.New().AppendField("payload", field.Bytes(field.Fixed(-1))), field.ErrInvalidLength)

	shared := wirestruct.New().Uint8("length").Bytes("first", field.LengthFrom("length"))
	require.ErrorIs(t, shared.AppendField("second", field.Bytes(field.LengthFrom("length"))), wirestruct.ErrInvalidDefinition)

	remainder := wirestruct.New().Bytes("rest", field.Remainder())
	require.ErrorIs(t, remainder.AppendField("after", field.Uint8), wirestruct.ErrInvalidDefinition)
}

func TestEmptyAndTruncated(t *testing.T) {
	definition := wirestruct.New().Int32("value").Uint8("flag")

	_, err := definition.Deserialize(stream.NewByteReader(nil))
	require.ErrorIs(t, err, wirestruct.ErrEmpty)
	require.ErrorIs(t, err, wirestruct.ErrDeserialize)
	require.NotErrorIs(t, err, wirestruct.ErrNotEnoughData)

	_, err = definition.Deserialize(stream.NewByteReader([]byte{1}))
	require.ErrorIs(t, err, wirestruct.ErrNotEnoughData)
	require.ErrorIs(t, err, wirestruct.ErrDeserialize)
	require.NotErrorIs(t, err, wirestruct.ErrEmpty)

	_, err = definition.Deserialize(stream.NewByteReader([]byte{1, 2, 3, 4}))
	require.ErrorIs(t, err, wirestruct.ErrNotEnoughData)

	// a second record that starts after the first one ended is empty again
	reader := stream.NewByteReader([]byte{0, 0, 0, 1, 1})
	_, err = definition.Deserialize(reader)
	require.NoError(t, err)
	_, err = definition.Deserialize(reader)
	require.ErrorIs(t, err, wirestruct.ErrEmpty)
}

func TestTruncatedBuffer(t *testing.T) {
	_, err := packetDefinition().Deserialize(stream.NewByteReader([]byte{1, 0, 0, 0, 3, 0xaa}))
	require.ErrorIs(t, err, wirestruct.ErrNotEnoughData)
	require.ErrorIs(t, err, stream.ErrEnded)
	require.Contains(t, err.Error(), "payload")
}

func TestPostDeserialize(t *testing.T) {
	type packet struct {
		Kind    uint8
		Payload []byte
	}

	definition := packetDefinition().PostDeserialize(func(record *wirestruct.Record) (any, error) {
		kind, _ := record.Get("kind")
		payload, _ := record.Get("payload")

		return &packet{Kind: kind.(uint8), Payload: payload.([]byte)}, nil
	})

	data := []byte{7, 0, 0, 0, 1, 0xff}
	result, err := wirestruct.DeserializeAs[*packet](definition, stream.NewByteReader(data))
	require.NoError(t, err)
	require.Equal(t, &packet{Kind: 7, Payload: []byte{0xff}}, result)

	_, err = wirestruct.DeserializeAs[*wirestruct.Record](definition, stream.NewByteReader(data))
	require.ErrorIs(t, err, wirestruct.ErrResultType)

	definition.PostDeserialize(func(record *wirestruct.Record) (any, error) {
		return nil, record.SetExtra("seen", true)
	})
	record := deserializeRecord(t, definition, data)
	seen, exists := record.Extra("seen")
	require.True(t, exists)
	require.Equal(t, true, seen)

	errRejected := ierrors.New("rejected")
	definition.PostDeserialize(wirestruct.FailWith(errRejected))
	_, err = definition.Deserialize(stream.NewByteReader(data))
	require.ErrorIs(t, err, errRejected)
	require.NotErrorIs(t, err, wirestruct.ErrDeserialize)

	definition.PostDeserialize(nil)
	deserializeRecord(t, definition, data)
}

func TestExtras(t *testing.T) {
	definition := wirestruct.New().
		Uint8("a").
		Uint8("b").
		Extra(map[string]any{
			"version": 2,
			"sum": wirestruct.Accessor(func(record *wirestruct.Record) any {
				a, _ := record.Get("a")
				b, _ := record.Get("b")

				return int(a.(uint8)) + int(b.(uint8))
			}),
		})

	record := deserializeRecord(t, definition, []byte{3, 4})
	require.Equal(t, []string{"sum", "version"}, record.ExtraNames())

	version, _ := record.Get("version")
	require.Equal(t, 2, version)

	sum, _ := record.Get("sum")
	require.Equal(t, 7, sum)

	require.NoError(t, record.Set("a", 10))
	sum, _ = record.Get("sum")
	require.Equal(t, 14, sum)

	require.ErrorIs(t, record.SetExtra("a", 1), wirestruct.ErrDuplicateField)

	serialized, err := definition.Serialize(wirestruct.Init{"a": 1, "b": 2, "version": 99})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, serialized)
}

func TestInitErrors(t *testing.T) {
	definition := packetDefinition()

	_, err := definition.Serialize(wirestruct.Init{"payload": []byte{1}})
	require.ErrorIs(t, err, wirestruct.ErrMissingField)

	_, err = definition.Serialize(wirestruct.Init{"kind": 1, "payload": []byte{1}, "unknown": 1})
	require.ErrorIs(t, err, wirestruct.ErrUnknownField)

	_, err = definition.Serialize(wirestruct.Init{"kind": 1000, "payload": []byte{1}})
	require.ErrorIs(t, err, field.ErrValueOutOfRange)

	// explicit length values are replaced by the length of the buffer
	serialized, err := definition.Serialize(wirestruct.Init{"kind": 1, "length": 99, "payload": []byte{1}})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 0, 0, 0, 1, 1}, serialized)

	small := wirestruct.New().Uint8("length").Bytes("payload", field.LengthFrom("length"))
	_, err = small.Serialize(wirestruct.Init{"payload": make([]byte, 256)})
	require.ErrorIs(t, err, field.ErrValueOutOfRange)
}

func TestSerializeInto(t *testing.T) {
	definition := packetDefinition()
	init := wirestruct.Init{"kind": 1, "payload": []byte{0xaa, 0xbb, 0xcc}}

	output := bytes.Repeat([]byte{0xee}, 7)
	_, err := definition.SerializeInto(init, output)
	require.ErrorIs(t, err, stream.ErrBufferTooSmall)
	require.Equal(t, bytes.Repeat([]byte{0xee}, 7), output)

	output = bytes.Repeat([]byte{0xee}, 10)
	written, err := definition.SerializeInto(init, output)
	require.NoError(t, err)
	require.Equal(t, 8, written)
	require.Equal(t, []byte{0x01, 0x00, 0x00, 0x00, 0x03, 0xaa, 0xbb, 0xcc, 0xee, 0xee}, output)
}

func TestSerializeRecord(t *testing.T) {
	definition := wirestruct.New().
		Uint8("kind").
		Uint16("flags").
		Uint32("length").
		Bytes("payload", field.LengthFrom("length")).
		Uint64("nonce")

	original, err := definition.Serialize(wirestruct.Init{
		"kind":    1,
		"flags":   0xbeef,
		"payload": []byte{1, 2, 3},
		"nonce":   uint64(math.MaxUint64),
	})
	require.NoError(t, err)

	record := deserializeRecord(t, definition, original)

	reserialized, err := definition.SerializeRecord(record, wirestruct.Init{"kind": 9})
	require.NoError(t, err)
	require.Len(t, reserialized, len(original))
	require.Equal(t, byte(9), reserialized[0])
	require.Equal(t, original[1:], reserialized[1:])

	kind, _ := record.Get("kind")
	require.Equal(t, uint8(9), kind)

	reserialized, err = definition.SerializeRecord(record, wirestruct.Init{"payload": []byte{4, 5}})
	require.NoError(t, err)
	require.Equal(t, []byte{9, 0xbe, 0xef, 0, 0, 0, 2, 4, 5, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, reserialized)

	length, _ := record.Get("length")
	require.Equal(t, uint32(2), length)

	_, err = definition.SerializeRecord(record, wirestruct.Init{"unknown": 1})
	require.ErrorIs(t, err, wirestruct.ErrUnknownField)

	_, err = packetDefinition().SerializeRecord(record, nil)
	require.ErrorIs(t, err, wirestruct.ErrForeignRecord)

	output := make([]byte, 4)
	_, err = definition.SerializeRecordInto(record, nil, output)
	require.ErrorIs(t, err, stream.ErrBufferTooSmall)
}

func TestSerializeRecordFailureKeepsRecord(t *testing.T) {
	definition := wirestruct.New().
		Uint8("a").
		Uint8("b").
		Uint8("length").
		Bytes("payload", field.LengthFrom("length"))

	record := deserializeRecord(t, definition, []byte{1, 2, 1, 0xaa})

	requireUnchanged := func() {
		a, _ := record.Get("a")
		require.Equal(t, uint8(1), a)
		b, _ := record.Get("b")
		require.Equal(t, uint8(2), b)
		payload, _ := record.Get("payload")
		require.Equal(t, []byte{0xaa}, payload)
		length, _ := record.Get("length")
		require.Equal(t, uint8(1), length)
	}

	_, err := definition.SerializeRecord(record, wirestruct.Init{"a": 5, "b": 300})
	require.ErrorIs(t, err, field.ErrValueOutOfRange)
	requireUnchanged()

	_, err = definition.SerializeRecord(record, wirestruct.Init{"a": 5, "payload": make([]byte, 256)})
	require.ErrorIs(t, err, field.ErrValueOutOfRange)
	requireUnchanged()

	_, err = definition.SerializeRecordInto(record, wirestruct.Init{"a": 5}, make([]byte, 2))
	require.ErrorIs(t, err, stream.ErrBufferTooSmall)
	requireUnchanged()

	serialized, err := definition.SerializeRecord(record, wirestruct.Init{"a": 5})
	require.NoError(t, err)
	require.Equal(t, []byte{5, 2, 1, 0xaa}, serialized)

	a, _ := record.Get("a")
	require.Equal(t, uint8(5), a)
}

func TestExtrasPlainAccessorFunc(t *testing.T) {
	definition := wirestruct.New().
		Uint8("a").
		Extra(map[string]any{
			"double": func(record *wirestruct.Record) any {
				a, _ := record.Get("a")

				return int(a.(uint8)) * 2
			},
		})

	record := deserializeRecord(t, definition, []byte{21})

	double, exists := record.Get("double")
	require.True(t, exists)
	require.Equal(t, 42, double)
}

func TestDeserializeAsync(t *testing.T) {
	definition := packetDefinition()

	pipeReader, pipeWriter := io.Pipe()
	reader := stream.NewAsyncReader(pipeReader)
	defer reader.Close()

	future := definition.DeserializeAsync(reader)
	require.False(t, future.IsComplete())

	go func() {
		_, _ = pipeWriter.Write([]byte{1, 0, 0})
		_, _ = pipeWriter.Write([]byte{0, 3, 0xaa})
		_, _ = pipeWriter.Write([]byte{0xbb, 0xcc})
		_ = pipeWriter.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	record, err := wirestruct.As[*wirestruct.Record](future.Wait(ctx))
	require.NoError(t, err)
	require.Equal(t, wirestruct.Init{
		"kind":    uint8(1),
		"length":  uint32(3),
		"payload": []byte{0xaa, 0xbb, 0xcc},
	}, record.Fields())

	_, err = definition.DeserializeAsync(reader).Wait(ctx)
	require.ErrorIs(t, err, wirestruct.ErrEmpty)
}

func TestDeserializeAsyncTruncated(t *testing.T) {
	pipeReader, pipeWriter := io.Pipe()
	reader := stream.NewAsyncReader(pipeReader)
	defer reader.Close()

	go func() {
		_, _ = pipeWriter.Write([]byte{1, 0})
		_ = pipeWriter.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := packetDefinition().DeserializeAsync(reader).Wait(ctx)
	require.ErrorIs(t, err, wirestruct.ErrNotEnoughData)
}

func TestDeserializeSourceSuspends(t *testing.T) {
	pipeReader, _ := io.Pipe()
	reader := stream.NewAsyncReader(pipeReader)
	defer reader.Close()

	require.PanicsWithValue(t, deferred.ErrSuspended, func() {
		_, _ = packetDefinition().DeserializeSource(reader)
	})
}

func TestDeserializeSynchronousSourceStaysImmediate(t *testing.T) {
	future := packetDefinition().DeserializeAsync(stream.Sync(stream.NewByteReader([]byte{1, 0, 0, 0, 0})))
	require.True(t, future.IsComplete())

	_, err := future.Result()
	require.NoError(t, err)
}

func TestDeserializeManualFutures(t *testing.T) {
	source := &manualSource{reader: stream.NewByteReader([]byte{2, 0, 0, 0, 1, 0xab})}
	future := packetDefinition().DeserializeAsync(source)

	for !future.IsComplete() {
		require.True(t, source.completeNext())
	}

	record, err := wirestruct.As[*wirestruct.Record](future.Result())
	require.NoError(t, err)

	payload, _ := record.Get("payload")
	require.Equal(t, []byte{0xab}, payload)
	require.Equal(t, 3, source.reads)
}

// manualSource suspends every read until completeNext is called.
type manualSource struct {
	reader  *stream.ByteReader
	pending func()
	reads   int
}

func (m *manualSource) Position() int {
	return m.reader.Position()
}

func (m *manualSource) ReadExactly(length int) deferred.Value[[]byte] {
	future := deferred.NewFuture[[]byte]()
	m.pending = func() {
		m.reads++
		future.Complete(m.reader.ReadExactly(length))
	}

	return deferred.Pending(future)
}

func (m *manualSource) ReadRemaining() deferred.Value[[]byte] {
	future := deferred.NewFuture[[]byte]()
	m.pending = func() {
		m.reads++
		future.Complete(m.reader.ReadRemaining())
	}

	return deferred.Pending(future)
}

func (m *manualSource) completeNext() bool {
	pending := m.pending
	if pending == nil {
		return false
	}

	m.pending = nil
	pending()

	return true
}
