// Package codec contains the text codecs that are used to turn text fields into bytes and back.
package codec

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/iotaledger/hive.go/ierrors"
)

// ErrUnknownCodec gets returned if no codec is known under a given name.
var ErrUnknownCodec = ierrors.New("unknown text codec")

// Codec converts between strings and their encoded byte representation.
type Codec interface {
	// Encode encodes the given text.
	Encode(text string) ([]byte, error)

	// Decode decodes the given bytes.
	Decode(data []byte) (string, error)

	// Name returns the name of the codec.
	Name() string
}

var (
	// UTF8 is the default codec. Invalid sequences are replaced with U+FFFD on decoding.
	UTF8 Codec = New("utf-8", unicode.UTF8)

	// UTF16LE encodes text as little endian UTF-16 without byte order mark.
	UTF16LE Codec = New("utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))

	// UTF16BE encodes text as big endian UTF-16 without byte order mark.
	UTF16BE Codec = New("utf-16be", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM))

	// Latin1 is ISO-8859-1.
	Latin1 Codec = New("iso-8859-1", charmap.ISO8859_1)

	Windows1252 Codec = New("windows-1252", charmap.Windows1252)
)

// New wraps an x/text encoding into a Codec.
func New(name string, enc encoding.Encoding) Codec {
	return &textCodec{
		name:     name,
		encoding: enc,
	}
}

// ByName returns the codec for the given WHATWG encoding label (e.g. "utf-8", "latin1", "utf-16le").
func ByName(name string) (Codec, error) {
	label := strings.ToLower(strings.TrimSpace(name))

	switch label {
	case "", "utf8", "utf-8":
		return UTF8, nil
	case "utf-16le":
		return UTF16LE, nil
	case "utf-16be":
		return UTF16BE, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, ierrors.Wrapf(ErrUnknownCodec, "name '%s'", name)
	}

	canonicalName, err := htmlindex.Name(enc)
	if err != nil {
		canonicalName = label
	}

	return New(canonicalName, enc), nil
}

type textCodec struct {
	name     string
	encoding encoding.Encoding
}

func (c *textCodec) Encode(text string) ([]byte, error) {
	encoded, err := c.encoding.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, ierrors.Wrapf(err, "failed to encode text with %s", c.name)
	}

	return encoded, nil
}

func (c *textCodec) Decode(data []byte) (string, error) {
	decoded, err := c.encoding.NewDecoder().Bytes(data)
	if err != nil {
		return "", ierrors.Wrapf(err, "failed to decode text with %s", c.name)
	}

	return string(decoded), nil
}

func (c *textCodec) Name() string {
	return c.name
}
