package wirestruct

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/wirestruct/deferred"
	"github.com/iotaledger/hive.go/wirestruct/field"
	"github.com/iotaledger/hive.go/wirestruct/stream"
)

// Deserialize reads a single record from a synchronous reader. The result is a *Record unless the post-deserialize
// Hook replaced it.
func (d *Definition) Deserialize(reader stream.ExactReader) (any, error) {
	return d.DeserializeSource(stream.Sync(reader))
}

// DeserializeSource reads a single record from a source whose reads are immediate. It panics with
// deferred.ErrSuspended if the source suspends.
func (d *Definition) DeserializeSource(source stream.Source) (any, error) {
	return d.read(source).ResolveSync()
}

// DeserializeAsync reads a single record from any source.
func (d *Definition) DeserializeAsync(source stream.Source) *deferred.Future[any] {
	return d.read(source).ResolveAsync()
}

// DeserializeAs reads a single record and asserts the type of the result.
func DeserializeAs[T any](d *Definition, reader stream.ExactReader) (T, error) {
	return As[T](d.Deserialize(reader))
}

// As asserts the type of a deserialized result.
func As[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}

	typed, ok := result.(T)
	if !ok {
		return zero, ierrors.Wrapf(ErrResultType, "expected %T, got %T", zero, result)
	}

	return typed, nil
}

// read composes the reads of all fields into a single deferred computation.
func (d *Definition) read(source stream.Source) deferred.Value[any] {
	start := source.Position()
	opts := d.Options()

	computation := deferred.Immediate(newValue(d))
	for _, entry := range d.fields {
		computation = deferred.Bind(computation, func(value *Value) deferred.Value[*Value] {
			return deferred.Map(d.readField(entry, opts, source, value), func(instance *field.Instance) (*Value, error) {
				value.instances[entry.name] = instance

				return value, nil
			})
		})
	}

	computation = deferred.Catch(computation, func(err error) deferred.Value[*Value] {
		return deferred.Failed[*Value](d.translate(err, start, source.Position()))
	})

	return deferred.Bind(computation, func(value *Value) deferred.Value[any] {
		return deferred.Of(d.finish(value))
	})
}

func (d *Definition) readField(entry *fieldEntry, opts field.Options, source stream.Source, value *Value) deferred.Value[*field.Instance] {
	return deferred.Catch(entry.kind.ReadInstance(opts, source, value), func(err error) deferred.Value[*field.Instance] {
		return deferred.Failed[*field.Instance](ierrors.Wrapf(err, "failed to read field '%s'", entry.name))
	})
}

// translate turns the end of the source into ErrEmpty or ErrNotEnoughData depending on whether the record started.
func (d *Definition) translate(err error, start int, position int) error {
	if !ierrors.Is(err, stream.ErrEnded) {
		return err
	}

	if position == start {
		d.optsLogger.LogDebug("source is empty", "position", start)

		return ierrors.WithMessagef(ErrEmpty, "%w", err)
	}

	d.optsLogger.LogDebug("record truncated", "start", start, "consumed", position-start, "err", err)

	return ierrors.WithMessagef(ErrNotEnoughData, "%d bytes consumed: %w", position-start, err)
}

// finish runs the post-deserialize Hook.
func (d *Definition) finish(value *Value) (any, error) {
	record := newRecord(value)
	if d.postDeserialize == nil {
		return record, nil
	}

	result, err := d.postDeserialize(record)
	if err != nil {
		return nil, err
	}

	if result == nil {
		return record, nil
	}

	return result, nil
}
