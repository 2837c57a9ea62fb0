package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	flag "github.com/spf13/pflag"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/lo"
	"github.com/iotaledger/hive.go/wirestruct/render"
	"github.com/iotaledger/hive.go/wirestruct/sequence"
	"github.com/iotaledger/hive.go/wirestruct/stream"
	"github.com/iotaledger/hive.go/wirestruct/workerpool"
)

type decodeCommand struct {
	byteEncoding *string
	indent       *bool
	extras       *bool
	limit        *int
	workers      *int
}

func (c *decodeCommand) description() string {
	return "decodes the records of binary inputs into JSON lines"
}

func (c *decodeCommand) addFlags(flagset *flag.FlagSet) {
	c.byteEncoding = flagset.String("bytes", string(render.Hex), "rendering of byte fields (hex, base58 or base64)")
	c.indent = flagset.Bool("indent", false, "indent the rendered JSON")
	c.extras = flagset.Bool("extras", true, "render the extras of the struct")
	c.limit = flagset.Int("limit", 0, "maximum number of records per input (0 means no limit)")
	c.workers = flagset.Int("workers", runtime.GOMAXPROCS(0), "number of inputs that are decoded concurrently")
}

func (c *decodeCommand) execute(ctx context.Context, cli *cli, inputs []string) error {
	byteEncoding, err := render.ParseByteEncoding(*c.byteEncoding)
	if err != nil {
		return ierrors.Wrapf(errUsage, "%s", err.Error())
	}

	if len(inputs) == 0 {
		inputs = []string{stdinName}
	}
	if len(lo.Filter(inputs, func(input string) bool { return input == stdinName })) > 1 {
		return ierrors.Wrap(errUsage, "standard input can only be decoded once")
	}

	renderer := render.New(
		render.WithByteEncoding(byteEncoding),
		render.WithExtras(*c.extras),
		render.WithIndent(lo.Cond(*c.indent, "  ", "")),
	)

	pool := workerpool.New(workerpool.WithWorkerCount(max(*c.workers, 1)), workerpool.WithLogger(cli.logger.NewChildLogger("workerpool")))
	defer pool.ShutdownGracefully()

	results, errs := workerpool.Map(ctx, pool, inputs, func(ctx context.Context, input string) ([][]byte, error) {
		return c.decodeInput(ctx, cli, renderer, input)
	})

	var decodeErr error
	for i, lines := range results {
		for _, line := range lines {
			if _, err := fmt.Fprintf(cli.stdout, "%s\n", line); err != nil {
				return ierrors.Wrap(err, "unable to write output")
			}
		}

		if errs[i] != nil {
			decodeErr = ierrors.Join(decodeErr, ierrors.Wrapf(errs[i], "input '%s'", inputs[i]))
		}
	}

	return decodeErr
}

// decodeInput renders every record of the input. The records read before an error are returned as well.
func (c *decodeCommand) decodeInput(ctx context.Context, cli *cli, renderer *render.Renderer, input string) ([][]byte, error) {
	source, closer, err := c.open(cli, input)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closer.Close() }()

	logger := cli.logger.NewChildLogger("decode")
	scanner := sequence.NewScanner(cli.definition, source, sequence.WithLimit(*c.limit), sequence.WithLogger(logger))

	lines := make([][]byte, 0)
	for scanner.Scan(ctx) {
		line, err := renderer.JSON(scanner.Record())
		if err != nil {
			return lines, err
		}

		lines = append(lines, line)
	}

	logger.LogDebug("decoded input", "input", input, "records", scanner.Count(), "bytes", source.Position())

	return lines, scanner.Err()
}

func (c *decodeCommand) open(cli *cli, input string) (stream.Source, io.Closer, error) {
	if input == stdinName {
		reader := stream.NewAsyncReader(cli.stdin)

		return reader, reader, nil
	}

	file, err := os.Open(input)
	if err != nil {
		return nil, nil, ierrors.Wrapf(err, "unable to open input '%s'", input)
	}

	return stream.Sync(stream.NewReader(file)), file, nil
}
