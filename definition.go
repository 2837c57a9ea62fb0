// Package wirestruct derives binary serializers and deserializers from a declarative description of a record layout.
//
// A Definition is an ordered list of named fields. Fixed-width scalars, fixed-length buffers and variable-length
// buffers (whose length is stored in an earlier field, computed from earlier fields or spans the rest of the source)
// can be combined freely. The same Definition reads records from synchronous and asynchronous sources and writes
// records into byte slices.
package wirestruct

import (
	"encoding/binary"
	"sort"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/lo"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/wirestruct/codec"
	"github.com/iotaledger/hive.go/wirestruct/field"
)

// Hook is called with every deserialized record. A nil result keeps the (possibly modified) record, any other result
// replaces it. Errors are returned to the caller unchanged.
type Hook func(record *Record) (any, error)

// Accessor is an extra whose value is computed from the record every time it is read.
type Accessor func(record *Record) any

// FailWith returns a Hook that always fails with the given error.
func FailWith(err error) Hook {
	return func(*Record) (any, error) {
		return nil, err
	}
}

// Definition describes the layout of a record. It is built once by appending fields and is safe for concurrent use
// afterward.
type Definition struct {
	*layout

	postDeserialize Hook

	optsByteOrder binary.ByteOrder
	optsTextCodec codec.Codec
	optsLogger    log.Logger
}

// New creates an empty Definition.
func New(opts ...options.Option[Definition]) *Definition {
	return options.Apply(&Definition{
		layout:        newLayout(),
		optsByteOrder: binary.BigEndian,
		optsTextCodec: codec.UTF8,
		optsLogger:    log.EmptyLogger,
	}, opts)
}

// AppendField appends a field to the Definition.
func (d *Definition) AppendField(name string, kind field.Kind) error {
	return d.appendField(name, kind)
}

// Field appends a field to the Definition and panics if that fails.
func (d *Definition) Field(name string, kind field.Kind) *Definition {
	if err := d.AppendField(name, kind); err != nil {
		panic(err)
	}

	return d
}

func (d *Definition) Int8(name string) *Definition {
	return d.Field(name, field.Int8)
}

func (d *Definition) Uint8(name string) *Definition {
	return d.Field(name, field.Uint8)
}

func (d *Definition) Int16(name string) *Definition {
	return d.Field(name, field.Int16)
}

func (d *Definition) Uint16(name string) *Definition {
	return d.Field(name, field.Uint16)
}

func (d *Definition) Int32(name string) *Definition {
	return d.Field(name, field.Int32)
}

func (d *Definition) Uint32(name string) *Definition {
	return d.Field(name, field.Uint32)
}

func (d *Definition) Int64(name string) *Definition {
	return d.Field(name, field.Int64)
}

func (d *Definition) Uint64(name string) *Definition {
	return d.Field(name, field.Uint64)
}

// Bytes appends a raw byte buffer.
func (d *Definition) Bytes(name string, length field.Length) *Definition {
	return d.Field(name, field.Bytes(length))
}

// Text appends a text buffer that is encoded with the text codec of the Definition.
func (d *Definition) Text(name string, length field.Length) *Definition {
	return d.Field(name, field.Text(length))
}

// MergeFields appends all fields and extras of other. Nothing is appended if any of them conflicts.
func (d *Definition) MergeFields(other *Definition) error {
	staged := d.layout.clone()

	for _, entry := range other.fields {
		if err := staged.appendField(entry.name, entry.kind); err != nil {
			return err
		}
	}

	if err := staged.addExtras(other.extras); err != nil {
		return err
	}

	d.layout = staged

	return nil
}

// Fields appends all fields and extras of other and panics if that fails.
func (d *Definition) Fields(other *Definition) *Definition {
	if err := d.MergeFields(other); err != nil {
		panic(err)
	}

	return d
}

// AddExtra adds named values that are attached to every deserialized record without being part of the wire format.
// Accessors (and plain func(*Record) any values) are evaluated against the record.
func (d *Definition) AddExtra(extras map[string]any) error {
	staged := d.layout.clone()
	if err := staged.addExtras(extras); err != nil {
		return err
	}

	d.layout = staged

	return nil
}

// Extra adds named extras and panics if that fails.
func (d *Definition) Extra(extras map[string]any) *Definition {
	if err := d.AddExtra(extras); err != nil {
		panic(err)
	}

	return d
}

// PostDeserialize sets the Hook that is called with every deserialized record (nil removes it).
func (d *Definition) PostDeserialize(hook Hook) *Definition {
	d.postDeserialize = hook

	return d
}

// Size returns the sum of the static sizes of all fields.
func (d *Definition) Size() int {
	return d.size
}

// Len returns the number of fields.
func (d *Definition) Len() int {
	return len(d.fields)
}

// FieldNames returns the names of the fields in wire order.
func (d *Definition) FieldNames() []string {
	return lo.Map(d.fields, func(entry *fieldEntry) string { return entry.name })
}

// ExtraNames returns the names of the extras in the order they were added.
func (d *Definition) ExtraNames() []string {
	return lo.CopySlice(d.extraNames)
}

// Kind returns the Kind of the named field.
func (d *Definition) Kind(name string) (field.Kind, bool) {
	index, exists := d.fieldIndex[name]
	if !exists {
		return field.Kind{}, false
	}

	return d.fields[index].kind, true
}

// IsLengthField returns true if the named field stores the length of a buffer and is computed when serializing.
func (d *Definition) IsLengthField(name string) bool {
	_, isLengthField := d.lengthFields[name]

	return isLengthField
}

// Options returns the formatting options that are passed to the fields.
func (d *Definition) Options() field.Options {
	return field.Options{
		ByteOrder: d.optsByteOrder,
		TextCodec: d.optsTextCodec,
	}
}

// Logger returns the logger of the Definition.
func (d *Definition) Logger() log.Logger {
	return d.optsLogger
}

type fieldEntry struct {
	name string
	kind field.Kind
}

// layout contains the accumulated fields and extras of a Definition.
type layout struct {
	fields       []*fieldEntry
	fieldIndex   map[string]int
	lengthFields map[string]string
	hasRemainder bool
	size         int
	extras       map[string]any
	extraNames   []string
}

func newLayout() *layout {
	return &layout{
		fieldIndex:   make(map[string]int),
		lengthFields: make(map[string]string),
		extras:       make(map[string]any),
	}
}

func (l *layout) clone() *layout {
	cloned := &layout{
		fields:       lo.CopySlice(l.fields),
		fieldIndex:   lo.MergeMaps(make(map[string]int, len(l.fieldIndex)), l.fieldIndex),
		lengthFields: lo.MergeMaps(make(map[string]string, len(l.lengthFields)), l.lengthFields),
		hasRemainder: l.hasRemainder,
		size:         l.size,
		extras:       lo.MergeMaps(make(map[string]any, len(l.extras)), l.extras),
		extraNames:   lo.CopySlice(l.extraNames),
	}

	return cloned
}

func (l *layout) appendField(name string, kind field.Kind) error {
	if name == "" {
		return ierrors.Wrap(ErrInvalidDefinition, "empty field name")
	}
	if l.isDefined(name) {
		return ierrors.Wrapf(ErrDuplicateField, "field '%s'", name)
	}
	if l.hasRemainder {
		return ierrors.Wrapf(ErrInvalidDefinition, "field '%s' follows a remainder buffer", name)
	}
	if err := kind.Validate(); err != nil {
		return ierrors.Wrapf(ErrInvalidDefinition, "field '%s': %w", name, err)
	}

	if sibling, hasSibling := kind.Length().Sibling(); kind.IsBuffer() && hasSibling {
		index, exists := l.fieldIndex[sibling]
		if !exists {
			return ierrors.Wrapf(ErrInvalidDefinition, "length field '%s' of '%s' is not declared before it", sibling, name)
		}
		if !l.fields[index].kind.IsInteger() {
			return ierrors.Wrapf(ErrInvalidDefinition, "length field '%s' of '%s' is not an integer", sibling, name)
		}
		if buffer, bound := l.lengthFields[sibling]; bound {
			return ierrors.Wrapf(ErrInvalidDefinition, "length field '%s' already stores the length of '%s'", sibling, buffer)
		}

		l.lengthFields[sibling] = name
	}

	if kind.IsBuffer() && kind.Length().Strategy() == field.LengthRemainder {
		l.hasRemainder = true
	}

	l.fieldIndex[name] = len(l.fields)
	l.fields = append(l.fields, &fieldEntry{name: name, kind: kind})
	l.size += lo.Max(kind.StaticSize(), 0)

	return nil
}

func (l *layout) addExtras(extras map[string]any) error {
	names := lo.Keys(extras)
	sort.Strings(names)

	for _, name := range names {
		if _, isField := l.fieldIndex[name]; isField {
			return ierrors.Wrapf(ErrDuplicateField, "extra '%s'", name)
		}

		if _, exists := l.extras[name]; !exists {
			l.extraNames = append(l.extraNames, name)
		}
		l.extras[name] = extras[name]
	}

	return nil
}

func (l *layout) isDefined(name string) bool {
	_, isField := l.fieldIndex[name]
	_, isExtra := l.extras[name]

	return isField || isExtra
}
