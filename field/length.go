package field

import (
	"fmt"

	"github.com/iotaledger/hive.go/ierrors"
)

// LengthStrategy determines how the length of a buffer is found.
type LengthStrategy uint8

const (
	// LengthFixed is a literal length that is known at definition time.
	LengthFixed LengthStrategy = iota
	// LengthSibling reads the length from an earlier integer field.
	LengthSibling
	// LengthComputed computes the length from the fields that were read before.
	LengthComputed
	// LengthRemainder consumes every byte until the source ends.
	LengthRemainder
)

// LengthComputer computes the length of a buffer from the fields that were read before it.
type LengthComputer func(values Values) (int, error)

// Length describes the length of a buffer.
type Length struct {
	strategy LengthStrategy
	fixed    int
	sibling  string
	computer LengthComputer
}

// Fixed returns a Length of exactly n bytes.
func Fixed(n int) Length {
	return Length{strategy: LengthFixed, fixed: n}
}

// LengthFrom returns a Length that is stored in the named integer field. The field must be declared before the
// buffer and is kept in sync with the buffer when serializing.
func LengthFrom(name string) Length {
	return Length{strategy: LengthSibling, sibling: name}
}

// LengthFunc returns a Length that is computed from the fields that were read before the buffer.
func LengthFunc(computer LengthComputer) Length {
	return Length{strategy: LengthComputed, computer: computer}
}

// Remainder returns a Length that covers every byte until the source ends.
func Remainder() Length {
	return Length{strategy: LengthRemainder}
}

// Strategy returns the LengthStrategy.
func (l Length) Strategy() LengthStrategy {
	return l.strategy
}

// FixedLength returns the literal length of a LengthFixed strategy.
func (l Length) FixedLength() (int, bool) {
	return l.fixed, l.strategy == LengthFixed
}

// Sibling returns the name of the length field of a LengthSibling strategy.
func (l Length) Sibling() (string, bool) {
	return l.sibling, l.strategy == LengthSibling
}

// Validate checks that the Length is well-formed.
func (l Length) Validate() error {
	switch l.strategy {
	case LengthFixed:
		if l.fixed < 0 {
			return ierrors.Wrapf(ErrInvalidLength, "fixed length %d", l.fixed)
		}
	case LengthSibling:
		if l.sibling == "" {
			return ierrors.Wrap(ErrInvalidLength, "missing length field name")
		}
	case LengthComputed:
		if l.computer == nil {
			return ierrors.Wrap(ErrInvalidLength, "missing length function")
		}
	case LengthRemainder:
	default:
		return ierrors.Wrapf(ErrInvalidLength, "unknown length strategy %d", l.strategy)
	}

	return nil
}

// resolve returns the amount of bytes to read.
func (l Length) resolve(values Values) (int, error) {
	switch l.strategy {
	case LengthFixed:
		return l.fixed, nil
	case LengthSibling:
		length, err := Int(values, l.sibling)
		if err != nil {
			return 0, ierrors.Wrapf(err, "length field '%s'", l.sibling)
		}

		return length, nil
	case LengthComputed:
		length, err := l.computer(values)
		if err != nil {
			return 0, ierrors.Wrap(err, "failed to compute length")
		}

		return length, nil
	default:
		return 0, ierrors.Wrapf(ErrInvalidLength, "strategy %d has no length", l.strategy)
	}
}

func (l Length) String() string {
	switch l.strategy {
	case LengthFixed:
		return fmt.Sprintf("%d", l.fixed)
	case LengthSibling:
		return l.sibling
	case LengthComputed:
		return "func"
	case LengthRemainder:
		return "..."
	default:
		return "?"
	}
}
