package wirestruct

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/wirestruct/stream"
)

// Serialize creates a new record from the init values and returns its bytes.
func (d *Definition) Serialize(init Init) ([]byte, error) {
	value, err := d.newValue(init)
	if err != nil {
		return nil, err
	}

	return d.serialize(value)
}

// SerializeInto creates a new record from the init values and writes it to the beginning of output. It returns the
// amount of written bytes.
func (d *Definition) SerializeInto(init Init, output []byte) (int, error) {
	value, err := d.newValue(init)
	if err != nil {
		return 0, err
	}

	return d.write(value, output)
}

// SerializeRecord applies the overrides to a deserialized record and returns its bytes. The record keeps the overrides
// if serializing succeeds and is left unchanged otherwise.
func (d *Definition) SerializeRecord(record *Record, overrides Init) ([]byte, error) {
	restore, err := d.applyOverrides(record, overrides)
	if err != nil {
		return nil, err
	}

	serialized, err := d.serialize(record.Value)
	if err != nil {
		restore()

		return nil, err
	}

	return serialized, nil
}

// SerializeRecordInto applies the overrides to a deserialized record and writes it to the beginning of output. Like
// SerializeRecord, a failed call leaves the record unchanged.
func (d *Definition) SerializeRecordInto(record *Record, overrides Init, output []byte) (int, error) {
	restore, err := d.applyOverrides(record, overrides)
	if err != nil {
		return 0, err
	}

	written, err := d.write(record.Value, output)
	if err != nil {
		restore()

		return 0, err
	}

	return written, nil
}

// SizeOf returns the amount of bytes a record created from the init values occupies.
func (d *Definition) SizeOf(init Init) (int, error) {
	value, err := d.newValue(init)
	if err != nil {
		return 0, err
	}

	return value.measure()
}

func (d *Definition) newValue(init Init) (*Value, error) {
	value := newValue(d)
	if err := value.build(init); err != nil {
		return nil, err
	}

	return value, nil
}

func (d *Definition) applyOverrides(record *Record, overrides Init) (restore func(), err error) {
	if record == nil || record.Value == nil {
		return nil, ierrors.Wrap(ErrForeignRecord, "record is empty")
	}
	if record.Value.definition != d {
		return nil, ErrForeignRecord
	}

	return record.Value.apply(overrides)
}

func (d *Definition) serialize(value *Value) ([]byte, error) {
	size, err := value.measure()
	if err != nil {
		return nil, err
	}

	output := make([]byte, size)
	if _, err = d.write(value, output); err != nil {
		return nil, err
	}

	return output, nil
}

// write validates and measures the record before writing its fields in order.
func (d *Definition) write(value *Value, output []byte) (int, error) {
	size, err := value.measure()
	if err != nil {
		return 0, err
	}

	if len(output) < size {
		return 0, ierrors.Wrapf(stream.ErrBufferTooSmall, "record needs %d bytes, got %d", size, len(output))
	}

	view := stream.NewView(output[:size], d.optsByteOrder)
	offset := 0
	for _, entry := range d.fields {
		instance := value.instances[entry.name]
		if err := instance.WriteInto(view, offset); err != nil {
			return 0, ierrors.Wrapf(err, "failed to write field '%s'", entry.name)
		}

		offset += instance.Size()
	}

	return offset, nil
}
