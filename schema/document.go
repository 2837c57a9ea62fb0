package schema

import (
	"encoding/binary"
	"strings"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/wirestruct/field"
)

const (
	ByteOrderBig    = "big"
	ByteOrderLittle = "little"
)

// Document is the decoded content of a layout file.
type Document struct {
	// ByteOrder is "big" (default) or "little".
	ByteOrder string `koanf:"byteorder"`

	// TextCodec is a WHATWG encoding label (default "utf-8").
	TextCodec string `koanf:"textcodec"`

	// Structs contains the layouts by their lower-cased name.
	Structs map[string]*StructSpec `koanf:"structs"`
}

// StructSpec describes a single record layout.
type StructSpec struct {
	// Include names layouts whose fields are merged before the own fields.
	Include []string `koanf:"include"`

	Fields []*FieldSpec `koanf:"fields"`

	Extras map[string]interface{} `koanf:"extras"`
}

// FieldSpec describes a single field. Buffers need exactly one of Length, LengthField and Remainder.
type FieldSpec struct {
	Name        string `koanf:"name"`
	Type        string `koanf:"type"`
	Length      *int   `koanf:"length"`
	LengthField string `koanf:"lengthfield"`
	Remainder   bool   `koanf:"remainder"`
}

// Kind returns the field.Kind described by the FieldSpec.
func (f *FieldSpec) Kind() (field.Kind, error) {
	typ, exists := field.TypeByName(strings.ToLower(f.Type))
	if !exists {
		return field.Kind{}, ierrors.Wrapf(ErrUnknownFieldType, "field '%s' has type '%s'", f.Name, f.Type)
	}

	if kind, isScalar := field.Scalar(typ); isScalar {
		if f.Length != nil || f.LengthField != "" || f.Remainder {
			return field.Kind{}, ierrors.Wrapf(ErrInvalidFieldSpec, "integer field '%s' has a length", f.Name)
		}

		return kind, nil
	}

	var lengths []field.Length
	if f.Length != nil {
		lengths = append(lengths, field.Fixed(*f.Length))
	}
	if f.LengthField != "" {
		lengths = append(lengths, field.LengthFrom(f.LengthField))
	}
	if f.Remainder {
		lengths = append(lengths, field.Remainder())
	}

	if len(lengths) != 1 {
		return field.Kind{}, ierrors.Wrapf(ErrInvalidFieldSpec, "buffer '%s' needs exactly one of length, lengthfield and remainder", f.Name)
	}

	if typ == field.TypeText {
		return field.Text(lengths[0]), nil
	}

	return field.Bytes(lengths[0]), nil
}

// ParseByteOrder returns the byte order with the given name.
func ParseByteOrder(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ByteOrderBig, "bigendian", "big-endian":
		return binary.BigEndian, nil
	case ByteOrderLittle, "littleendian", "little-endian":
		return binary.LittleEndian, nil
	default:
		return nil, ierrors.Wrapf(ErrUnknownByteOrder, "'%s'", name)
	}
}
