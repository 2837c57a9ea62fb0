// Package render converts records to field-ordered JSON and JSON objects back to init values.
package render

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iancoleman/orderedmap"
	"github.com/mr-tron/base58"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/wirestruct"
	"github.com/iotaledger/hive.go/wirestruct/field"
)

var (
	// ErrUnknownByteEncoding is returned if a byte encoding is unknown.
	ErrUnknownByteEncoding = ierrors.New("unknown byte encoding")
	// ErrInvalidBytes is returned if a JSON value can not be decoded into bytes.
	ErrInvalidBytes = ierrors.New("invalid bytes")
)

// ByteEncoding determines how byte buffers are written to JSON.
type ByteEncoding string

const (
	// Hex encodes bytes as 0x-prefixed hex strings.
	Hex ByteEncoding = "hex"
	// Base58 encodes bytes with the bitcoin base58 alphabet.
	Base58 ByteEncoding = "base58"
	// Base64 encodes bytes with standard padded base64.
	Base64 ByteEncoding = "base64"
)

// ParseByteEncoding returns the ByteEncoding with the given name.
func ParseByteEncoding(name string) (ByteEncoding, error) {
	switch encoding := ByteEncoding(name); encoding {
	case Hex, Base58, Base64:
		return encoding, nil
	default:
		return "", ierrors.Wrapf(ErrUnknownByteEncoding, "'%s'", name)
	}
}

// Renderer converts records to JSON.
type Renderer struct {
	optsByteEncoding ByteEncoding
	optsExtras       bool
	optsIndent       string
}

// New creates a Renderer.
func New(opts ...options.Option[Renderer]) *Renderer {
	return options.Apply(&Renderer{
		optsByteEncoding: Hex,
		optsExtras:       true,
	}, opts)
}

// Map returns the fields (followed by the extras) of the record in wire order. 64-bit integers are rendered as
// decimal strings.
func (r *Renderer) Map(record *wirestruct.Record) *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.SetEscapeHTML(false)

	for _, name := range record.Definition().FieldNames() {
		value, _ := record.Get(name)
		m.Set(name, r.value(value))
	}

	if r.optsExtras {
		for _, name := range record.ExtraNames() {
			value, _ := record.Extra(name)
			m.Set(name, r.value(value))
		}
	}

	return m
}

// JSON renders a deserialized result. Records are rendered with Map, other results (returned by post-deserialize
// hooks) with encoding/json.
func (r *Renderer) JSON(result any) ([]byte, error) {
	if record, isRecord := result.(*wirestruct.Record); isRecord {
		result = r.Map(record)
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", r.optsIndent)

	if err := encoder.Encode(result); err != nil {
		return nil, ierrors.Wrap(err, "failed to render record")
	}

	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}

// EncodeBytes encodes bytes with the configured ByteEncoding.
func (r *Renderer) EncodeBytes(data []byte) string {
	switch r.optsByteEncoding {
	case Base58:
		return base58.Encode(data)
	case Base64:
		return base64.StdEncoding.EncodeToString(data)
	default:
		return hexutil.Encode(data)
	}
}

// DecodeBytes decodes a string that was encoded with the configured ByteEncoding.
func (r *Renderer) DecodeBytes(encoded string) ([]byte, error) {
	var decoded []byte
	var err error

	switch r.optsByteEncoding {
	case Base58:
		if encoded == "" {
			return []byte{}, nil
		}
		decoded, err = base58.Decode(encoded)
	case Base64:
		decoded, err = base64.StdEncoding.DecodeString(encoded)
	default:
		decoded, err = hexutil.Decode(encoded)
	}

	if err != nil {
		return nil, ierrors.Wrapf(ErrInvalidBytes, "'%s' is not valid %s: %w", encoded, r.optsByteEncoding, err)
	}

	return decoded, nil
}

// ParseInit decodes a JSON object into init values for the given Definition. Byte fields are decoded with the
// configured ByteEncoding, numbers keep their full precision.
func (r *Renderer) ParseInit(definition *wirestruct.Definition, data []byte) (wirestruct.Init, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var init wirestruct.Init
	if err := decoder.Decode(&init); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse init values")
	}

	for name, value := range init {
		kind, isField := definition.Kind(name)
		if !isField || kind.Type() != field.TypeBytes {
			continue
		}

		encoded, isString := value.(string)
		if !isString {
			return nil, ierrors.Wrapf(ErrInvalidBytes, "field '%s' must be a string", name)
		}

		decoded, err := r.DecodeBytes(encoded)
		if err != nil {
			return nil, ierrors.Wrapf(err, "field '%s'", name)
		}
		init[name] = decoded
	}

	return init, nil
}

func (r *Renderer) value(value any) any {
	switch typed := value.(type) {
	case []byte:
		return r.EncodeBytes(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case uint64:
		return strconv.FormatUint(typed, 10)
	default:
		return value
	}
}

// WithByteEncoding sets the encoding of byte buffers (default: Hex).
func WithByteEncoding(encoding ByteEncoding) options.Option[Renderer] {
	return func(r *Renderer) {
		r.optsByteEncoding = encoding
	}
}

// WithExtras sets whether the extras of a record are rendered (default: true).
func WithExtras(extras bool) options.Option[Renderer] {
	return func(r *Renderer) {
		r.optsExtras = extras
	}
}

// WithIndent sets the indentation of the rendered JSON (default: compact).
func WithIndent(indent string) options.Option[Renderer] {
	return func(r *Renderer) {
		r.optsIndent = indent
	}
}
