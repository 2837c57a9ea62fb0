package schema

import (
	flag "github.com/spf13/pflag"
)

const (
	// FlagByteOrder overrides the byte order of a schema.
	FlagByteOrder = "byteorder"
	// FlagTextCodec overrides the text codec of a schema.
	FlagTextCodec = "textcodec"
)

// NewUnsortedFlagSet creates a FlagSet that keeps the order in which flags were defined.
func NewUnsortedFlagSet(name string, errorHandling flag.ErrorHandling) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, errorHandling)
	flagset.SortFlags = false

	return flagset
}

// AddFlags defines the flags that override the formatting options of a schema.
func AddFlags(flagset *flag.FlagSet) {
	flagset.String(FlagByteOrder, ByteOrderBig, "byte order of multi-byte integers (big or little)")
	flagset.String(FlagTextCodec, "utf-8", "text codec of text fields (any WHATWG encoding label)")
}
