package wirestruct

import (
	"github.com/iotaledger/hive.go/ierrors"
)

var (
	// ErrDeserialize is the base of every error that is returned when a record can not be deserialized.
	ErrDeserialize = ierrors.New("failed to deserialize")
	// ErrEmpty gets returned if the source ended before the first byte of a record (end of a sequence of records).
	ErrEmpty = ierrors.WithMessage(ErrDeserialize, "source is empty")
	// ErrNotEnoughData gets returned if the source ended in the middle of a record.
	ErrNotEnoughData = ierrors.WithMessage(ErrDeserialize, "not enough data")

	// ErrDuplicateField gets returned if a name is used twice in a Definition.
	ErrDuplicateField = ierrors.New("duplicate field")
	// ErrInvalidDefinition gets returned if a field can not be added to a Definition.
	ErrInvalidDefinition = ierrors.New("invalid definition")
	// ErrMissingField gets returned if a value for a required field is missing.
	ErrMissingField = ierrors.New("missing field")
	// ErrUnknownField gets returned if a value is given for a name that is neither a field nor an extra.
	ErrUnknownField = ierrors.New("unknown field")
	// ErrForeignRecord gets returned if a record is serialized with a Definition that did not create it.
	ErrForeignRecord = ierrors.New("record belongs to another definition")
	// ErrResultType gets returned if a deserialized result does not have the requested type.
	ErrResultType = ierrors.New("unexpected result type")
)
