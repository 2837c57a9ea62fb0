package field

import (
	"github.com/iotaledger/hive.go/ierrors"
)

var (
	// ErrInvalidValue gets returned if a value can not be converted to the type of a field.
	ErrInvalidValue = ierrors.New("invalid field value")
	// ErrValueOutOfRange gets returned if a value does not fit into the width of a field.
	ErrValueOutOfRange = ierrors.New("field value out of range")
	// ErrLengthMismatch gets returned if the content of a fixed-length buffer does not have the declared length.
	ErrLengthMismatch = ierrors.New("buffer length mismatch")
	// ErrInvalidLength gets returned if a length strategy is malformed or yields a negative length.
	ErrInvalidLength = ierrors.New("invalid buffer length")
	// ErrMissingInstance gets returned if a field that a length depends on is not present.
	ErrMissingInstance = ierrors.New("missing field instance")
)
