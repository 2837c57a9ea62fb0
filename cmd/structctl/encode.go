package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/wirestruct/render"
)

type encodeCommand struct {
	byteEncoding *string
	output       *string
}

func (c *encodeCommand) description() string {
	return "encodes JSON objects into binary records"
}

func (c *encodeCommand) addFlags(flagset *flag.FlagSet) {
	c.byteEncoding = flagset.String("bytes", string(render.Hex), "encoding of byte fields in the JSON input (hex, base58 or base64)")
	c.output = flagset.String("output", "", "path of the output file (default: standard output)")
}

func (c *encodeCommand) execute(ctx context.Context, cli *cli, inputs []string) (err error) {
	byteEncoding, err := render.ParseByteEncoding(*c.byteEncoding)
	if err != nil {
		return ierrors.Wrapf(errUsage, "%s", err.Error())
	}
	renderer := render.New(render.WithByteEncoding(byteEncoding))

	if len(inputs) == 0 {
		inputs = []string{stdinName}
	}

	output := cli.stdout
	if *c.output != "" {
		file, createErr := os.Create(*c.output)
		if createErr != nil {
			return ierrors.Wrapf(createErr, "unable to create output '%s'", *c.output)
		}
		defer func() {
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
		}()

		output = file
	}

	logger := cli.logger.NewChildLogger("encode")
	for _, input := range inputs {
		count, err := c.encodeInput(ctx, cli, renderer, input, output)
		if err != nil {
			return ierrors.Wrapf(err, "input '%s', record %d", input, count)
		}

		logger.LogDebug("encoded input", "input", input, "records", count)
	}

	return nil
}

// encodeInput serializes every JSON object of the input and returns the number of written records.
func (c *encodeCommand) encodeInput(ctx context.Context, cli *cli, renderer *render.Renderer, input string, output io.Writer) (int, error) {
	reader := cli.stdin
	if input != stdinName {
		file, err := os.Open(input)
		if err != nil {
			return 0, ierrors.Wrapf(err, "unable to open input '%s'", input)
		}
		defer func() { _ = file.Close() }()

		reader = file
	}

	decoder := json.NewDecoder(reader)
	for count := 0; ; count++ {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		var object json.RawMessage
		if err := decoder.Decode(&object); err != nil {
			if ierrors.Is(err, io.EOF) {
				return count, nil
			}

			return count, ierrors.Wrap(err, "invalid JSON")
		}

		init, err := renderer.ParseInit(cli.definition, object)
		if err != nil {
			return count, err
		}

		serialized, err := cli.definition.Serialize(init)
		if err != nil {
			return count, err
		}

		if _, err := output.Write(serialized); err != nil {
			return count, ierrors.Wrap(err, "unable to write output")
		}
	}
}
