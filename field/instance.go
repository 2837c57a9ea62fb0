package field

import (
	"github.com/spf13/cast"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/wirestruct/stream"
)

// Instance is the live value of a single field.
type Instance struct {
	kind    Kind
	options Options

	// value is the typed value of a scalar.
	value any

	// content is the raw (encoded) content of a buffer.
	content []byte

	// text is the decoded content of a text buffer.
	text string

	// lengthOf is the buffer whose length this scalar reports.
	lengthOf *Instance
}

// Kind returns the Kind of the Instance.
func (i *Instance) Kind() Kind {
	return i.kind
}

// IsLengthField returns true if the Instance reports the length of a buffer.
func (i *Instance) IsLengthField() bool {
	return i.lengthOf != nil
}

// Size returns the current amount of bytes the Instance occupies on the wire.
func (i *Instance) Size() int {
	if i.kind.IsInteger() {
		return i.kind.StaticSize()
	}

	return len(i.content)
}

// Get returns the current value. Scalars return their sized Go integer type, bytes a []byte and text a string.
func (i *Instance) Get() any {
	switch {
	case i.lengthOf != nil:
		if value, err := i.boundValue(); err == nil {
			return value
		}

		return i.value
	case i.kind.typ == TypeBytes:
		return i.content
	case i.kind.typ == TypeText:
		return i.text
	default:
		return i.value
	}
}

// Int returns the value of an integer Instance as an int.
func (i *Instance) Int() (int, error) {
	if !i.kind.IsInteger() {
		return 0, ierrors.Wrapf(ErrInvalidValue, "%s is not an integer", i.kind)
	}

	if i.lengthOf != nil {
		return i.lengthOf.Size(), nil
	}

	return scalarInt(i.value)
}

// Set replaces the value. A length field accepts the value but keeps reporting the length of its buffer.
func (i *Instance) Set(value any) error {
	switch i.kind.typ {
	case TypeBytes:
		content, err := toBytes(value)
		if err != nil {
			return err
		}

		return i.setContent(content, "")
	case TypeText:
		text, err := cast.ToStringE(value)
		if err != nil {
			return ierrors.WithMessage(ErrInvalidValue, err.Error())
		}

		content, err := i.options.textCodec().Encode(text)
		if err != nil {
			return ierrors.WithMessage(ErrInvalidValue, err.Error())
		}

		return i.setContent(content, text)
	default:
		scalar, err := coerceScalar(i.kind.typ, value)
		if err != nil {
			return err
		}
		i.value = scalar

		return nil
	}
}

// Validate checks that the Instance can be written.
func (i *Instance) Validate() error {
	if i.lengthOf != nil {
		_, err := i.boundValue()

		return err
	}

	if fixed, isFixed := i.kind.length.FixedLength(); i.kind.IsBuffer() && isFixed && len(i.content) != fixed {
		return ierrors.Wrapf(ErrLengthMismatch, "expected %d bytes, got %d", fixed, len(i.content))
	}

	return nil
}

// WriteInto writes the Instance into the view at the given offset.
func (i *Instance) WriteInto(view *stream.View, offset int) error {
	if err := i.Validate(); err != nil {
		return err
	}

	if i.kind.IsBuffer() {
		return view.PutBytes(offset, i.content)
	}

	return encodeScalar(view, offset, i.Get())
}

// Snapshot returns a copy of the current state of the Instance.
func (i *Instance) Snapshot() Instance {
	return *i
}

// Restore resets the Instance to a state returned by Snapshot.
func (i *Instance) Restore(snapshot Instance) {
	*i = snapshot
}

// boundValue returns the length of the bound buffer as the scalar type of the Instance.
func (i *Instance) boundValue() (any, error) {
	value, err := coerceScalar(i.kind.typ, i.lengthOf.Size())
	if err != nil {
		return nil, ierrors.Wrapf(err, "buffer length does not fit into %s", i.kind)
	}

	return value, nil
}

func (i *Instance) setContent(content []byte, text string) error {
	if fixed, isFixed := i.kind.length.FixedLength(); isFixed && len(content) != fixed {
		return ierrors.Wrapf(ErrLengthMismatch, "expected %d bytes, got %d", fixed, len(content))
	}

	i.content = content
	i.text = text

	return nil
}

func (i *Instance) zero() {
	if i.kind.IsInteger() {
		i.value = decodeScalar(i.kind.typ, i.options.byteOrder(), make([]byte, i.kind.StaticSize()))

		return
	}

	fixed, _ := i.kind.length.FixedLength()
	i.content = make([]byte, fixed)

	if i.kind.typ == TypeText {
		i.text, _ = i.options.textCodec().Decode(i.content)
	}
}

func toBytes(value any) ([]byte, error) {
	switch typed := value.(type) {
	case []byte:
		return append([]byte{}, typed...), nil
	case string:
		return []byte(typed), nil
	default:
		return nil, ierrors.Wrapf(ErrInvalidValue, "%T is not a byte slice", value)
	}
}
