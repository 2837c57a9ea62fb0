package wirestruct

import (
	"sort"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/lo"
)

// Record is a deserialized record. Field access goes through the field instances of its Value.
type Record struct {
	// Value is the Value the record was read into. Serializing the record again reuses it.
	Value *Value

	extras map[string]any
}

func newRecord(value *Value) *Record {
	return &Record{
		Value:  value,
		extras: lo.MergeMaps(make(map[string]any, len(value.definition.extras)), value.definition.extras),
	}
}

// Definition returns the Definition the record was read with.
func (r *Record) Definition() *Definition {
	return r.Value.definition
}

// Get returns the named field or extra. Accessor extras are evaluated.
func (r *Record) Get(name string) (any, bool) {
	if value, isField := r.Value.Get(name); isField {
		return value, true
	}

	return r.Extra(name)
}

// Set replaces the value of the named field.
func (r *Record) Set(name string, value any) error {
	return r.Value.Set(name, value)
}

// Extra returns the named extra. Accessor extras are evaluated.
func (r *Record) Extra(name string) (any, bool) {
	extra, exists := r.extras[name]
	if !exists {
		return nil, false
	}

	switch accessor := extra.(type) {
	case Accessor:
		return accessor(r), true
	case func(*Record) any:
		return accessor(r), true
	default:
		return extra, true
	}
}

// SetExtra sets an extra of this record. It fails if the name belongs to a field.
func (r *Record) SetExtra(name string, value any) error {
	if _, isField := r.Value.instances[name]; isField {
		return ierrors.Wrapf(ErrDuplicateField, "'%s' is a field", name)
	}

	r.extras[name] = value

	return nil
}

// ExtraNames returns the names of the extras of the record.
func (r *Record) ExtraNames() []string {
	names := r.Definition().ExtraNames()
	known := lo.KeyOnlyBy(names, func(name string) string { return name })

	added := lo.Filter(lo.Keys(r.extras), func(name string) bool {
		_, isKnown := known[name]

		return !isKnown
	})
	sort.Strings(added)

	return append(names, added...)
}

// Fields returns the current values of all fields.
func (r *Record) Fields() Init {
	fields := make(Init, len(r.Value.instances))
	for name, instance := range r.Value.instances {
		fields[name] = instance.Get()
	}

	return fields
}

// Size returns the current amount of bytes the record occupies on the wire.
func (r *Record) Size() int {
	return r.Value.Size()
}
