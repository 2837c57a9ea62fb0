package field

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/wirestruct/stream"
)

// signedRanges contains the bounds of the signed scalar types.
var signedRanges = map[Type][2]int64{
	TypeInt8:  {math.MinInt8, math.MaxInt8},
	TypeInt16: {math.MinInt16, math.MaxInt16},
	TypeInt32: {math.MinInt32, math.MaxInt32},
	TypeInt64: {math.MinInt64, math.MaxInt64},
}

// unsignedRanges contains the upper bounds of the unsigned scalar types.
var unsignedRanges = map[Type]uint64{
	TypeUint8:  math.MaxUint8,
	TypeUint16: math.MaxUint16,
	TypeUint32: math.MaxUint32,
	TypeUint64: math.MaxUint64,
}

// coerceScalar converts value into the Go type of the scalar type typ.
func coerceScalar(typ Type, value any) (any, error) {
	switch value.(type) {
	case nil, bool:
		return nil, ierrors.Wrapf(ErrInvalidValue, "%T is not a number", value)
	}

	if bounds, isSigned := signedRanges[typ]; isSigned {
		signed, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		if signed < bounds[0] || signed > bounds[1] {
			return nil, ierrors.Wrapf(ErrValueOutOfRange, "%d does not fit into %s", signed, typ)
		}

		return signedValue(typ, signed), nil
	}

	unsigned, err := toUint64(value)
	if err != nil {
		return nil, err
	}
	if unsigned > unsignedRanges[typ] {
		return nil, ierrors.Wrapf(ErrValueOutOfRange, "%d does not fit into %s", unsigned, typ)
	}

	return unsignedValue(typ, unsigned), nil
}

func toInt64(value any) (int64, error) {
	switch typed := value.(type) {
	case uint64:
		if typed > math.MaxInt64 {
			return 0, ierrors.Wrapf(ErrValueOutOfRange, "%d exceeds int64", typed)
		}

		return int64(typed), nil
	case uint:
		if uint64(typed) > math.MaxInt64 {
			return 0, ierrors.Wrapf(ErrValueOutOfRange, "%d exceeds int64", typed)
		}

		return int64(typed), nil
	}

	signed, err := cast.ToInt64E(value)
	if err != nil {
		if _, unsignedErr := cast.ToUint64E(value); unsignedErr == nil {
			return 0, ierrors.Wrapf(ErrValueOutOfRange, "%v exceeds int64", value)
		}

		return 0, ierrors.WithMessagef(ErrInvalidValue, "%s", err.Error())
	}

	return signed, nil
}

func toUint64(value any) (uint64, error) {
	switch typed := value.(type) {
	case uint64:
		return typed, nil
	case uint:
		return uint64(typed), nil
	case string:
		if unsigned, err := strconv.ParseUint(strings.TrimSpace(typed), 0, 64); err == nil {
			return unsigned, nil
		}
	case json.Number:
		if unsigned, err := strconv.ParseUint(string(typed), 10, 64); err == nil {
			return unsigned, nil
		}
	}

	if signed, err := cast.ToInt64E(value); err == nil {
		if signed < 0 {
			return 0, ierrors.Wrapf(ErrValueOutOfRange, "%d is negative", signed)
		}

		return uint64(signed), nil
	}

	unsigned, err := cast.ToUint64E(value)
	if err != nil {
		return 0, ierrors.WithMessagef(ErrInvalidValue, "%s", err.Error())
	}

	return unsigned, nil
}

func signedValue(typ Type, value int64) any {
	switch typ {
	case TypeInt8:
		return int8(value)
	case TypeInt16:
		return int16(value)
	case TypeInt32:
		return int32(value)
	default:
		return value
	}
}

func unsignedValue(typ Type, value uint64) any {
	switch typ {
	case TypeUint8:
		return uint8(value)
	case TypeUint16:
		return uint16(value)
	case TypeUint32:
		return uint32(value)
	default:
		return value
	}
}

// scalarInt converts a scalar value to an int.
func scalarInt(value any) (int, error) {
	switch typed := value.(type) {
	case int8:
		return int(typed), nil
	case int16:
		return int(typed), nil
	case int32:
		return int(typed), nil
	case int64:
		if typed > math.MaxInt || typed < math.MinInt {
			return 0, ierrors.Wrapf(ErrValueOutOfRange, "%d exceeds int", typed)
		}

		return int(typed), nil
	case uint8:
		return int(typed), nil
	case uint16:
		return int(typed), nil
	case uint32:
		if uint64(typed) > math.MaxInt {
			return 0, ierrors.Wrapf(ErrValueOutOfRange, "%d exceeds int", typed)
		}

		return int(typed), nil
	case uint64:
		if typed > math.MaxInt {
			return 0, ierrors.Wrapf(ErrValueOutOfRange, "%d exceeds int", typed)
		}

		return int(typed), nil
	default:
		return 0, ierrors.Wrapf(ErrInvalidValue, "%T is not an integer", value)
	}
}

func decodeScalar(typ Type, byteOrder binary.ByteOrder, data []byte) any {
	switch typ {
	case TypeInt8:
		return int8(data[0])
	case TypeUint8:
		return data[0]
	case TypeInt16:
		return int16(byteOrder.Uint16(data))
	case TypeUint16:
		return byteOrder.Uint16(data)
	case TypeInt32:
		return int32(byteOrder.Uint32(data))
	case TypeUint32:
		return byteOrder.Uint32(data)
	case TypeInt64:
		return int64(byteOrder.Uint64(data))
	case TypeUint64:
		return byteOrder.Uint64(data)
	default:
		panic(ierrors.Errorf("%s is not a scalar type", typ))
	}
}

func encodeScalar(view *stream.View, offset int, value any) error {
	switch typed := value.(type) {
	case int8:
		return view.PutInt8(offset, typed)
	case uint8:
		return view.PutUint8(offset, typed)
	case int16:
		return view.PutInt16(offset, typed)
	case uint16:
		return view.PutUint16(offset, typed)
	case int32:
		return view.PutInt32(offset, typed)
	case uint32:
		return view.PutUint32(offset, typed)
	case int64:
		return view.PutInt64(offset, typed)
	case uint64:
		return view.PutUint64(offset, typed)
	default:
		return ierrors.Wrapf(ErrInvalidValue, "%T is not a scalar", value)
	}
}
