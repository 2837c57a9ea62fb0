package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/iotaledger/hive.go/lo"
	"github.com/iotaledger/hive.go/wirestruct/field"
)

type describeCommand struct{}

func (c *describeCommand) description() string {
	return "prints the fields of a struct"
}

func (c *describeCommand) addFlags(*flag.FlagSet) {}

func (c *describeCommand) execute(_ context.Context, cli *cli, _ []string) error {
	definition := cli.definition

	size := fmt.Sprintf("%d bytes", definition.Size())
	if dynamicFields := lo.Filter(definition.FieldNames(), func(name string) bool {
		kind, _ := definition.Kind(name)

		return kind.StaticSize() == field.DynamicSize
	}); len(dynamicFields) != 0 {
		size = fmt.Sprintf("at least %d bytes", definition.Size())
	}

	writer := tabwriter.NewWriter(cli.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(writer, "struct:\t%s\n", cli.structName)
	_, _ = fmt.Fprintf(writer, "size:\t%s\n", size)
	_, _ = fmt.Fprintf(writer, "byte order:\t%s\n", definition.Options().ByteOrder)
	_, _ = fmt.Fprintf(writer, "text codec:\t%s\n\n", definition.Options().TextCodec.Name())

	_, _ = fmt.Fprintln(writer, "FIELD\tKIND\tSIZE\t")
	for _, name := range definition.FieldNames() {
		kind, _ := definition.Kind(name)

		fieldSize := lo.Cond(kind.StaticSize() == field.DynamicSize, "dynamic", fmt.Sprintf("%d", kind.StaticSize()))
		if definition.IsLengthField(name) {
			fieldSize += " (length)"
		}

		_, _ = fmt.Fprintf(writer, "%s\t%s\t%s\t\n", name, kind, fieldSize)
	}

	if extras := definition.ExtraNames(); len(extras) != 0 {
		_, _ = fmt.Fprintf(writer, "\nextras:\t%v\n", extras)
	}

	return writer.Flush()
}
