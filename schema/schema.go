// Package schema builds struct definitions from layout files (JSON, YAML or TOML) that can be overridden by command
// line flags and environment variables.
package schema

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	flag "github.com/spf13/pflag"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/lo"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/wirestruct"
	"github.com/iotaledger/hive.go/wirestruct/codec"
)

var (
	// ErrUnknownFormat is returned if the format of a layout file is unknown.
	ErrUnknownFormat = ierrors.New("unknown layout file format")
	// ErrUnknownStruct is returned if a layout is requested or included that does not exist.
	ErrUnknownStruct = ierrors.New("unknown struct")
	// ErrIncludeCycle is returned if layouts include each other.
	ErrIncludeCycle = ierrors.New("include cycle")
	// ErrUnknownFieldType is returned if a field has an unknown type.
	ErrUnknownFieldType = ierrors.New("unknown field type")
	// ErrInvalidFieldSpec is returned if the length of a field is not described correctly.
	ErrInvalidFieldSpec = ierrors.New("invalid field specification")
	// ErrUnknownByteOrder is returned if the byte order is neither big nor little.
	ErrUnknownByteOrder = ierrors.New("unknown byte order")
)

// Schema holds layout documents from several sources (files, raw bytes, flags, env vars).
type Schema struct {
	config *koanf.Koanf

	optsLogger log.Logger
}

// New returns a new Schema.
func New(opts ...options.Option[Schema]) *Schema {
	return options.Apply(&Schema{
		config:     koanf.New("."),
		optsLogger: log.EmptyLogger,
	}, opts)
}

// WithLogger sets the logger of the Schema.
func WithLogger(logger log.Logger) options.Option[Schema] {
	return func(s *Schema) {
		if logger != nil {
			s.optsLogger = logger
		}
	}
}

// LoadFile loads a JSON, YAML or TOML layout file and merges it into the Schema. Existing keys are overwritten.
func (s *Schema) LoadFile(filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		return ierrors.Wrapf(err, "unable to load layout file '%s'", filePath)
	}

	parser, err := parserFor(filepath.Ext(filePath))
	if err != nil {
		return ierrors.Wrapf(err, "file '%s'", filePath)
	}

	if err := s.config.Load(file.Provider(filePath), parser); err != nil {
		return ierrors.Wrapf(err, "unable to parse layout file '%s'", filePath)
	}

	s.optsLogger.LogDebug("loaded layout file", "path", filePath)

	return nil
}

// LoadBytes loads a layout document in the given format ("json", "yaml", "yml" or "toml").
func (s *Schema) LoadBytes(data []byte, format string) error {
	parser, err := parserFor(format)
	if err != nil {
		return err
	}

	if err := s.config.Load(rawbytes.Provider(data), parser); err != nil {
		return ierrors.Wrap(err, "unable to parse layout")
	}

	return nil
}

// LoadFlagSet loads the values of a FlagSet. Flags only overwrite existing keys if they were set on the command line.
func (s *Schema) LoadFlagSet(flagSet *flag.FlagSet) error {
	return s.config.Load(newFlagOverrides(flagSet, s.config), nil)
}

// LoadEnvironmentVars loads env vars with the given prefix. Only existing keys are overwritten.
func (s *Schema) LoadEnvironmentVars(prefix string) error {
	if prefix != "" {
		prefix += "_"
	}

	return s.config.Load(env.Provider(prefix, ".", func(key string) string {
		mapKey := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, prefix)), "_", ".")
		if !s.config.Exists(mapKey) {
			// only accept values from env vars that already exist in the layout
			return ""
		}

		return mapKey
	}), nil)
}

// Store writes the merged layout document in the format that belongs to the file extension.
func (s *Schema) Store(filePath string) error {
	parser, err := parserFor(filepath.Ext(filePath))
	if err != nil {
		return err
	}

	if jsonParser, isJSON := parser.(*JSONLowerParser); isJSON {
		jsonParser.indent = "  "
	}

	data, err := parser.Marshal(s.config.Raw())
	if err != nil {
		return ierrors.Wrap(err, "unable to marshal layout")
	}

	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return ierrors.Wrap(err, "unable to store layout")
	}

	return nil
}

// Document decodes the merged layout document.
func (s *Schema) Document() (*Document, error) {
	document := &Document{}
	if err := s.config.Unmarshal("", document); err != nil {
		return nil, ierrors.Wrap(err, "unable to decode layout")
	}

	return document, nil
}

// StructNames returns the sorted names of all layouts.
func (s *Schema) StructNames() []string {
	names := s.config.MapKeys("structs")
	sort.Strings(names)

	return names
}

// Definition builds the Definition of the named layout.
func (s *Schema) Definition(name string) (*wirestruct.Definition, error) {
	builder, err := s.builder()
	if err != nil {
		return nil, err
	}

	return builder.build(strings.ToLower(name), nil)
}

// Definitions builds the Definitions of all layouts.
func (s *Schema) Definitions() (map[string]*wirestruct.Definition, error) {
	builder, err := s.builder()
	if err != nil {
		return nil, err
	}

	definitions := make(map[string]*wirestruct.Definition, len(builder.document.Structs))
	for name := range builder.document.Structs {
		if definitions[name], err = builder.build(name, nil); err != nil {
			return nil, err
		}
	}

	return definitions, nil
}

func (s *Schema) builder() (*definitionBuilder, error) {
	document, err := s.Document()
	if err != nil {
		return nil, err
	}

	byteOrder, err := ParseByteOrder(document.ByteOrder)
	if err != nil {
		return nil, err
	}

	textCodec, err := codec.ByName(document.TextCodec)
	if err != nil {
		return nil, err
	}

	return &definitionBuilder{
		document: document,
		options: []options.Option[wirestruct.Definition]{
			wirestruct.WithByteOrder(byteOrder),
			wirestruct.WithTextCodec(textCodec),
			wirestruct.WithLogger(s.optsLogger),
		},
	}, nil
}

// definitionBuilder resolves the includes of the layouts of a Document.
type definitionBuilder struct {
	document *Document
	options  []options.Option[wirestruct.Definition]
}

func (b *definitionBuilder) build(name string, path []string) (*wirestruct.Definition, error) {
	if slices.Contains(path, name) {
		return nil, ierrors.Wrapf(ErrIncludeCycle, "%s -> %s", strings.Join(path, " -> "), name)
	}

	spec, exists := b.document.Structs[name]
	if !exists || spec == nil {
		return nil, ierrors.Wrapf(ErrUnknownStruct, "'%s'", name)
	}

	definition := wirestruct.New(b.options...)
	for _, include := range spec.Include {
		included, err := b.build(strings.ToLower(include), append(lo.CopySlice(path), name))
		if err != nil {
			return nil, err
		}

		if err = definition.MergeFields(included); err != nil {
			return nil, ierrors.Wrapf(err, "struct '%s' includes '%s'", name, include)
		}
	}

	for _, fieldSpec := range spec.Fields {
		kind, err := fieldSpec.Kind()
		if err != nil {
			return nil, ierrors.Wrapf(err, "struct '%s'", name)
		}

		if err = definition.AppendField(fieldSpec.Name, kind); err != nil {
			return nil, ierrors.Wrapf(err, "struct '%s'", name)
		}
	}

	if err := definition.AddExtra(spec.Extras); err != nil {
		return nil, ierrors.Wrapf(err, "struct '%s'", name)
	}

	return definition, nil
}

func parserFor(format string) (koanf.Parser, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "json":
		return &JSONLowerParser{}, nil
	case "yaml", "yml":
		return &YAMLLowerParser{}, nil
	case "toml":
		return &TOMLLowerParser{}, nil
	default:
		return nil, ierrors.Wrapf(ErrUnknownFormat, "'%s'", format)
	}
}
