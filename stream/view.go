package stream

import (
	"encoding/binary"

	"github.com/iotaledger/hive.go/ierrors"
)

// View is a fixed-capacity byte sink that writes values at absolute offsets using a configurable byte order.
type View struct {
	data      []byte
	byteOrder binary.ByteOrder
}

// NewView creates a View over data. A nil byteOrder defaults to big endian.
func NewView(data []byte, byteOrder binary.ByteOrder) *View {
	if byteOrder == nil {
		byteOrder = binary.BigEndian
	}

	return &View{
		data:      data,
		byteOrder: byteOrder,
	}
}

// Len returns the capacity of the View.
func (v *View) Len() int {
	return len(v.data)
}

// Bytes returns the underlying bytes.
func (v *View) Bytes() []byte {
	return v.data
}

// ByteOrder returns the byte order used for multi-byte values.
func (v *View) ByteOrder() binary.ByteOrder {
	return v.byteOrder
}

func (v *View) PutUint8(offset int, value uint8) error {
	target, err := v.slice(offset, 1)
	if err != nil {
		return err
	}
	target[0] = value

	return nil
}

func (v *View) PutUint16(offset int, value uint16) error {
	target, err := v.slice(offset, 2)
	if err != nil {
		return err
	}
	v.byteOrder.PutUint16(target, value)

	return nil
}

func (v *View) PutUint32(offset int, value uint32) error {
	target, err := v.slice(offset, 4)
	if err != nil {
		return err
	}
	v.byteOrder.PutUint32(target, value)

	return nil
}

func (v *View) PutUint64(offset int, value uint64) error {
	target, err := v.slice(offset, 8)
	if err != nil {
		return err
	}
	v.byteOrder.PutUint64(target, value)

	return nil
}

func (v *View) PutInt8(offset int, value int8) error {
	return v.PutUint8(offset, uint8(value))
}

func (v *View) PutInt16(offset int, value int16) error {
	return v.PutUint16(offset, uint16(value))
}

func (v *View) PutInt32(offset int, value int32) error {
	return v.PutUint32(offset, uint32(value))
}

func (v *View) PutInt64(offset int, value int64) error {
	return v.PutUint64(offset, uint64(value))
}

// PutBytes copies value to the given offset.
func (v *View) PutBytes(offset int, value []byte) error {
	target, err := v.slice(offset, len(value))
	if err != nil {
		return err
	}
	copy(target, value)

	return nil
}

func (v *View) slice(offset int, length int) ([]byte, error) {
	if offset < 0 || offset+length > len(v.data) {
		return nil, ierrors.Wrapf(ErrOutOfRange, "cannot write %d bytes at offset %d of view with length %d", length, offset, len(v.data))
	}

	return v.data[offset : offset+length], nil
}
