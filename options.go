package wirestruct

import (
	"encoding/binary"

	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/wirestruct/codec"
)

// WithByteOrder sets the byte order of multi-byte scalars (default: big endian).
func WithByteOrder(byteOrder binary.ByteOrder) options.Option[Definition] {
	return func(d *Definition) {
		if byteOrder != nil {
			d.optsByteOrder = byteOrder
		}
	}
}

// WithTextCodec sets the codec of text fields (default: UTF-8).
func WithTextCodec(textCodec codec.Codec) options.Option[Definition] {
	return func(d *Definition) {
		if textCodec != nil {
			d.optsTextCodec = textCodec
		}
	}
}

// WithLogger sets the logger that reports the end of sequences and truncated records.
func WithLogger(logger log.Logger) options.Option[Definition] {
	return func(d *Definition) {
		if logger != nil {
			d.optsLogger = logger
		}
	}
}
