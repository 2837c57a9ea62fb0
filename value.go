package wirestruct

import (
	"sort"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/lo"
	"github.com/iotaledger/hive.go/wirestruct/field"
)

// Init maps field names to the values a record is serialized from.
type Init map[string]any

// Value holds the field instances of a single record.
type Value struct {
	definition *Definition
	instances  map[string]*field.Instance
}

func newValue(definition *Definition) *Value {
	return &Value{
		definition: definition,
		instances:  make(map[string]*field.Instance, definition.Len()),
	}
}

// Definition returns the Definition the Value was created for.
func (v *Value) Definition() *Definition {
	return v.definition
}

// Instance returns the instance of the named field.
func (v *Value) Instance(name string) (*field.Instance, bool) {
	instance, exists := v.instances[name]

	return instance, exists
}

// Get returns the current value of the named field.
func (v *Value) Get(name string) (any, bool) {
	instance, exists := v.instances[name]
	if !exists {
		return nil, false
	}

	return instance.Get(), true
}

// Set replaces the value of the named field.
func (v *Value) Set(name string, value any) error {
	instance, exists := v.instances[name]
	if !exists {
		return ierrors.Wrapf(ErrUnknownField, "field '%s'", name)
	}

	if err := instance.Set(value); err != nil {
		return ierrors.Wrapf(err, "failed to set field '%s'", name)
	}

	return nil
}

// Size returns the current amount of bytes the record occupies on the wire.
func (v *Value) Size() int {
	return lo.Sum(lo.Map(v.definition.fields, func(entry *fieldEntry) int {
		return v.instances[entry.name].Size()
	})...)
}

// build creates the instances of a new record from the init values.
func (v *Value) build(init Init) error {
	if err := v.checkNames(init); err != nil {
		return err
	}

	opts := v.definition.Options()
	for _, entry := range v.definition.fields {
		initValue, provided := init[entry.name]

		// length fields always report the length of their buffer
		if v.definition.IsLengthField(entry.name) {
			provided = false
		} else if !provided {
			return ierrors.Wrapf(ErrMissingField, "field '%s'", entry.name)
		}

		instance, err := entry.kind.CreateInstance(opts, v, initValue, provided)
		if err != nil {
			return ierrors.Wrapf(err, "failed to create field '%s'", entry.name)
		}

		v.instances[entry.name] = instance
	}

	return nil
}

// apply sets the overridden values of an existing record. It returns a function that restores the previous values.
// If an override fails, the record is restored before the error is returned.
func (v *Value) apply(overrides Init) (restore func(), err error) {
	if err = v.checkNames(overrides); err != nil {
		return nil, err
	}

	snapshots := make(map[string]field.Instance, len(v.instances))
	for name, instance := range v.instances {
		snapshots[name] = instance.Snapshot()
	}

	restore = func() {
		for name, snapshot := range snapshots {
			v.instances[name].Restore(snapshot)
		}
	}

	for _, entry := range v.definition.fields {
		override, exists := overrides[entry.name]
		if !exists || v.definition.IsLengthField(entry.name) {
			continue
		}

		if err = v.Set(entry.name, override); err != nil {
			restore()

			return nil, err
		}
	}

	return restore, nil
}

// measure validates all instances and returns the size of the record.
func (v *Value) measure() (int, error) {
	for _, entry := range v.definition.fields {
		if err := v.instances[entry.name].Validate(); err != nil {
			return 0, ierrors.Wrapf(err, "invalid field '%s'", entry.name)
		}
	}

	return v.Size(), nil
}

func (v *Value) checkNames(init Init) error {
	names := lo.Keys(init)
	sort.Strings(names)

	for _, name := range names {
		if _, isField := v.definition.fieldIndex[name]; isField {
			continue
		}
		if _, isExtra := v.definition.extras[name]; isExtra {
			continue
		}

		return ierrors.Wrapf(ErrUnknownField, "'%s'", name)
	}

	return nil
}
