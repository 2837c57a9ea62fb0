package schema

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/maps"
	"github.com/spf13/pflag"

	"github.com/iotaledger/hive.go/ierrors"
)

// flagOverrides feeds the formatting flags of a layout (see AddFlags) into the koanf instance of a Schema.
//
// A flag given on the command line always replaces the value of the layout document. A flag that was not given only
// fills in its default if the loaded documents left the key empty, so "--byteorder" never silently resets the byte
// order of a layout file to big endian.
type flagOverrides struct {
	flagset *pflag.FlagSet
	layouts *koanf.Koanf
}

func newFlagOverrides(flagset *pflag.FlagSet, layouts *koanf.Koanf) *flagOverrides {
	return &flagOverrides{
		flagset: flagset,
		layouts: layouts,
	}
}

// Read returns the overriding flag values keyed by their lower-cased, "." separated layout path.
func (o *flagOverrides) Read() (map[string]interface{}, error) {
	overrides := make(map[string]interface{})
	o.flagset.VisitAll(func(f *pflag.Flag) {
		key := strings.ToLower(f.Name)
		if !f.Changed && o.layouts.Exists(key) {
			return
		}

		overrides[key] = o.value(f)
	})

	return maps.Unflatten(overrides, "."), nil
}

// value converts the flag into the type the layout document would contain.
func (o *flagOverrides) value(f *pflag.Flag) interface{} {
	switch f.Value.Type() {
	case "bool":
		enabled, _ := o.flagset.GetBool(f.Name)

		return enabled
	case "int":
		number, _ := o.flagset.GetInt(f.Name)

		return int64(number)
	default:
		return f.Value.String()
	}
}

// ReadBytes is not supported, flag values are only available as a map.
func (o *flagOverrides) ReadBytes() ([]byte, error) {
	return nil, ierrors.New("flag overrides can only be read as a map")
}

// Watch is not supported, flags do not change after parsing.
func (o *flagOverrides) Watch(func(event interface{}, err error)) error {
	return ierrors.New("flag overrides can not be watched")
}
