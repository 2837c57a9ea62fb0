package field

import (
	"fmt"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/wirestruct/deferred"
	"github.com/iotaledger/hive.go/wirestruct/stream"
)

// DynamicSize is the static size of kinds whose size is only known per instance.
const DynamicSize = -1

// Type identifies the wire shape of a Kind.
type Type uint8

const (
	TypeInt8 Type = iota
	TypeUint8
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64
	TypeBytes
	TypeText
)

var typeNames = map[Type]string{
	TypeInt8:   "int8",
	TypeUint8:  "uint8",
	TypeInt16:  "int16",
	TypeUint16: "uint16",
	TypeInt32:  "int32",
	TypeUint32: "uint32",
	TypeInt64:  "int64",
	TypeUint64: "uint64",
	TypeBytes:  "bytes",
	TypeText:   "text",
}

func (t Type) String() string {
	if name, exists := typeNames[t]; exists {
		return name
	}

	return fmt.Sprintf("Type(%d)", t)
}

// TypeByName returns the Type with the given name.
func TypeByName(name string) (Type, bool) {
	for t, typeName := range typeNames {
		if typeName == name {
			return t, true
		}
	}

	return 0, false
}

// Kind describes the wire shape of a field. It owns no data.
type Kind struct {
	typ    Type
	length Length
}

var (
	Int8   = Kind{typ: TypeInt8}
	Uint8  = Kind{typ: TypeUint8}
	Int16  = Kind{typ: TypeInt16}
	Uint16 = Kind{typ: TypeUint16}
	Int32  = Kind{typ: TypeInt32}
	Uint32 = Kind{typ: TypeUint32}
	Int64  = Kind{typ: TypeInt64}
	Uint64 = Kind{typ: TypeUint64}
)

// Scalar returns the integer Kind of the given Type.
func Scalar(typ Type) (Kind, bool) {
	kind := Kind{typ: typ}

	return kind, kind.IsInteger()
}

// Bytes returns the Kind of a raw byte buffer.
func Bytes(length Length) Kind {
	return Kind{typ: TypeBytes, length: length}
}

// Text returns the Kind of a text buffer that is encoded with the text codec of the Options.
func Text(length Length) Kind {
	return Kind{typ: TypeText, length: length}
}

// Type returns the Type of the Kind.
func (k Kind) Type() Type {
	return k.typ
}

// Length returns the Length of a buffer Kind.
func (k Kind) Length() Length {
	return k.length
}

// IsInteger returns true for scalar kinds.
func (k Kind) IsInteger() bool {
	return k.typ <= TypeUint64
}

// IsBuffer returns true for byte and text buffers.
func (k Kind) IsBuffer() bool {
	return k.typ == TypeBytes || k.typ == TypeText
}

// StaticSize returns the size of the Kind or DynamicSize if it depends on the instance.
func (k Kind) StaticSize() int {
	switch k.typ {
	case TypeInt8, TypeUint8:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32:
		return 4
	case TypeInt64, TypeUint64:
		return 8
	case TypeBytes, TypeText:
		if fixed, isFixed := k.length.FixedLength(); isFixed {
			return fixed
		}
	}

	return DynamicSize
}

// Validate checks that the Kind is well-formed.
func (k Kind) Validate() error {
	if _, exists := typeNames[k.typ]; !exists {
		return ierrors.Wrapf(ErrInvalidValue, "unknown field type %d", k.typ)
	}

	if k.IsBuffer() {
		return k.length.Validate()
	}

	return nil
}

func (k Kind) String() string {
	if k.IsBuffer() {
		return fmt.Sprintf("%s[%s]", k.typ, k.length)
	}

	return k.typ.String()
}

// CreateInstance creates an Instance from the given value. If provided is false the Instance holds the zero value of
// the Kind. Buffers with a LengthFrom strategy bind their length field, which then reports the buffer's length.
func (k Kind) CreateInstance(opts Options, values Values, value any, provided bool) (*Instance, error) {
	instance := &Instance{
		kind:    k,
		options: opts,
	}

	if !provided {
		instance.zero()
	} else if err := instance.Set(value); err != nil {
		return nil, err
	}

	if err := k.bind(instance, values); err != nil {
		return nil, err
	}

	return instance, nil
}

// ReadInstance reads an Instance from the source. Earlier fields are looked up in values.
func (k Kind) ReadInstance(opts Options, source stream.Source, values Values) deferred.Value[*Instance] {
	if k.IsInteger() {
		return deferred.Map(source.ReadExactly(k.StaticSize()), func(data []byte) (*Instance, error) {
			return &Instance{
				kind:    k,
				options: opts,
				value:   decodeScalar(k.typ, opts.byteOrder(), data),
			}, nil
		})
	}

	var content deferred.Value[[]byte]
	if k.length.strategy == LengthRemainder {
		content = source.ReadRemaining()
	} else {
		length, err := k.length.resolve(values)
		if err != nil {
			return deferred.Failed[*Instance](err)
		}
		if length < 0 {
			return deferred.Failed[*Instance](ierrors.Wrapf(ErrInvalidLength, "length %d", length))
		}

		content = source.ReadExactly(length)
	}

	return deferred.Map(content, func(data []byte) (*Instance, error) {
		instance := &Instance{
			kind:    k,
			options: opts,
			content: data,
		}

		if k.typ == TypeText {
			text, err := opts.textCodec().Decode(data)
			if err != nil {
				return nil, err
			}
			instance.text = text
		}

		if err := k.bind(instance, values); err != nil {
			return nil, err
		}

		return instance, nil
	})
}

// bind couples a buffer with its length field.
func (k Kind) bind(instance *Instance, values Values) error {
	sibling, hasSibling := k.length.Sibling()
	if !k.IsBuffer() || !hasSibling {
		return nil
	}

	lengthField, exists := values.Instance(sibling)
	if !exists {
		return ierrors.Wrapf(ErrMissingInstance, "length field '%s'", sibling)
	}
	if !lengthField.kind.IsInteger() {
		return ierrors.Wrapf(ErrInvalidValue, "length field '%s' is not an integer", sibling)
	}

	lengthField.lengthOf = instance

	return nil
}
