package field

import (
	"encoding/binary"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/wirestruct/codec"
)

// Options contains the formatting options that are handed to every Kind.
type Options struct {
	// ByteOrder is the byte order of multi-byte scalars.
	ByteOrder binary.ByteOrder

	// TextCodec is the codec of text buffers.
	TextCodec codec.Codec
}

// DefaultOptions returns big endian Options with the UTF-8 codec.
func DefaultOptions() Options {
	return Options{
		ByteOrder: binary.BigEndian,
		TextCodec: codec.UTF8,
	}
}

func (o Options) byteOrder() binary.ByteOrder {
	if o.ByteOrder == nil {
		return binary.BigEndian
	}

	return o.ByteOrder
}

func (o Options) textCodec() codec.Codec {
	if o.TextCodec == nil {
		return codec.UTF8
	}

	return o.TextCodec
}

// Values gives access to the instances of a struct value that is being built or read.
type Values interface {
	// Instance returns the instance of the named field if it was created or read already.
	Instance(name string) (*Instance, bool)
}

// Int returns the value of the named integer field.
func Int(values Values, name string) (int, error) {
	instance, exists := values.Instance(name)
	if !exists {
		return 0, ierrors.Wrapf(ErrMissingInstance, "field '%s'", name)
	}

	return instance.Int()
}
