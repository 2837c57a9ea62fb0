package render_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/wirestruct"
	"github.com/iotaledger/hive.go/wirestruct/field"
	"github.com/iotaledger/hive.go/wirestruct/render"
	"github.com/iotaledger/hive.go/wirestruct/stream"
)

func transferDefinition() *wirestruct.Definition {
	return wirestruct.New().
		Uint8("kind").
		Uint64("amount").
		Uint8("memoLength").
		Text("memo", field.LengthFrom("memoLength")).
		Bytes("address", field.Fixed(4)).
		Extra(map[string]any{"network": "test"})
}

func deserialize(t *testing.T, definition *wirestruct.Definition, init wirestruct.Init) *wirestruct.Record {
	serialized, err := definition.Serialize(init)
	require.NoError(t, err)

	record, err := wirestruct.DeserializeAs[*wirestruct.Record](definition, stream.NewByteReader(serialized))
	require.NoError(t, err)

	return record
}

func TestJSON(t *testing.T) {
	record := deserialize(t, transferDefinition(), wirestruct.Init{
		"kind":    1,
		"amount":  uint64(math.MaxUint64),
		"memo":    "<hi>",
		"address": []byte{0xde, 0xad, 0xbe, 0xef},
	})

	rendered, err := render.New().JSON(record)
	require.NoError(t, err)
	require.Equal(t, `{"kind":1,"amount":"18446744073709551615","memoLength":4,"memo":"<hi>","address":"0xdeadbeef","network":"test"}`, string(rendered))

	rendered, err = render.New(render.WithByteEncoding(render.Base58), render.WithExtras(false)).JSON(record)
	require.NoError(t, err)
	require.Equal(t, `{"kind":1,"amount":"18446744073709551615","memoLength":4,"memo":"<hi>","address":"6h8cQN"}`, string(rendered))

	rendered, err = render.New(render.WithByteEncoding(render.Base64), render.WithExtras(false)).JSON(record)
	require.NoError(t, err)
	require.Contains(t, string(rendered), `"address":"3q2+7w=="`)

	rendered, err = render.New().JSON(map[string]int{"replaced": 1})
	require.NoError(t, err)
	require.Equal(t, `{"replaced":1}`, string(rendered))
}

func TestParseInit(t *testing.T) {
	definition := transferDefinition()

	for _, encoding := range []render.ByteEncoding{render.Hex, render.Base58, render.Base64} {
		renderer := render.New(render.WithByteEncoding(encoding))

		record := deserialize(t, definition, wirestruct.Init{
			"kind":    2,
			"amount":  uint64(math.MaxUint64 - 1),
			"memo":    "héllo",
			"address": []byte{1, 2, 3, 4},
		})

		rendered, err := renderer.JSON(record)
		require.NoError(t, err)

		init, err := renderer.ParseInit(definition, rendered)
		require.NoError(t, err)

		serialized, err := definition.Serialize(init)
		require.NoError(t, err)

		original, err := definition.SerializeRecord(record, nil)
		require.NoError(t, err)
		require.Equal(t, original, serialized, "encoding %s", encoding)
	}
}

func TestParseInitErrors(t *testing.T) {
	definition := transferDefinition()
	renderer := render.New()

	_, err := renderer.ParseInit(definition, []byte(`{"address": 5}`))
	require.ErrorIs(t, err, render.ErrInvalidBytes)

	_, err = renderer.ParseInit(definition, []byte(`{"address": "zz"}`))
	require.ErrorIs(t, err, render.ErrInvalidBytes)

	_, err = renderer.ParseInit(definition, []byte(`[1, 2]`))
	require.Error(t, err)

	_, err = render.ParseByteEncoding("base32")
	require.ErrorIs(t, err, render.ErrUnknownByteEncoding)

	encoding, err := render.ParseByteEncoding("base58")
	require.NoError(t, err)
	require.Equal(t, render.Base58, encoding)
}
