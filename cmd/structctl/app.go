package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	flag "github.com/spf13/pflag"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/lo"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/wirestruct"
	"github.com/iotaledger/hive.go/wirestruct/schema"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	envPrefix = "STRUCTCTL"
	stdinName = "-"
)

var errUsage = ierrors.New("invalid usage")

// command is a subcommand of structctl.
type command interface {
	description() string
	addFlags(flagset *flag.FlagSet)
	execute(ctx context.Context, cli *cli, inputs []string) error
}

var commands = map[string]func() command{
	"describe": func() command { return &describeCommand{} },
	"decode":   func() command { return &decodeCommand{} },
	"encode":   func() command { return &encodeCommand{} },
}

// cli holds what every command needs.
type cli struct {
	stdin      io.Reader
	stdout     io.Writer
	logger     log.Logger
	structName string
	definition *wirestruct.Definition
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr, "missing command")

		return exitUsage
	}

	newCommand, exists := commands[args[0]]
	if !exists {
		printUsage(stderr, fmt.Sprintf("unknown command '%s'", args[0]))

		return exitUsage
	}
	cmd := newCommand()

	flagset := schema.NewUnsortedFlagSet(args[0], flag.ContinueOnError)
	flagset.SetOutput(stderr)
	schemaPath := flagset.String("schema", "", "path of the layout file (json, yaml or toml)")
	structName := flagset.String("struct", "", "name of the struct in the layout file")
	logLevel := flagset.String("log-level", "info", "log level (debug, info, warning, error)")

	schemaFlags := schema.NewUnsortedFlagSet("schema", flag.ContinueOnError)
	schema.AddFlags(schemaFlags)
	flagset.AddFlagSet(schemaFlags)

	cmd.addFlags(flagset)

	if err := flagset.Parse(args[1:]); err != nil {
		if ierrors.Is(err, flag.ErrHelp) {
			return exitOK
		}

		return exitUsage
	}

	level, err := log.LevelFromString(*logLevel)
	if err != nil {
		return fail(stderr, ierrors.Wrapf(errUsage, "%s", err.Error()))
	}
	logger := log.NewLogger(log.WithName("structctl"), log.WithLevel(level), log.WithOutput(stderr))

	if *schemaPath == "" || *structName == "" {
		return fail(stderr, ierrors.Wrap(errUsage, "--schema and --struct are required"))
	}

	definition, err := loadDefinition(logger, *schemaPath, *structName, schemaFlags)
	if err != nil {
		return fail(stderr, err)
	}

	if err := cmd.execute(ctx, &cli{
		stdin:      stdin,
		stdout:     stdout,
		logger:     logger,
		structName: *structName,
		definition: definition,
	}, flagset.Args()); err != nil {
		return fail(stderr, err)
	}

	return exitOK
}

func loadDefinition(logger log.Logger, schemaPath string, structName string, schemaFlags *flag.FlagSet) (*wirestruct.Definition, error) {
	layouts := schema.New(schema.WithLogger(logger.NewChildLogger("schema")))

	if err := layouts.LoadFile(schemaPath); err != nil {
		return nil, err
	}

	if err := layouts.LoadFlagSet(schemaFlags); err != nil {
		return nil, ierrors.Wrap(err, "unable to load flags")
	}

	if err := layouts.LoadEnvironmentVars(envPrefix); err != nil {
		return nil, ierrors.Wrap(err, "unable to load environment variables")
	}

	return layouts.Definition(structName)
}

// fail prints the error and returns the matching exit code.
func fail(stderr io.Writer, err error) int {
	_, _ = fmt.Fprintf(stderr, "Error:\t%s\n", err)

	return lo.Cond(ierrors.Is(err, errUsage), exitUsage, exitError)
}

// printUsage prints the usage of structctl in case of an error.
func printUsage(stderr io.Writer, errorMsg string) {
	_, _ = fmt.Fprintf(stderr, "Error:\t%s\n\n", errorMsg)
	_, _ = fmt.Fprintf(stderr, "Usage of structctl:\n")
	_, _ = fmt.Fprintf(stderr, "\tstructctl <command> --schema [layoutFile] --struct [name] [flags] [inputs...]\n\n")
	_, _ = fmt.Fprintf(stderr, "Commands:\n")

	names := lo.Keys(commands)
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(stderr, "\t%-10s%s\n", name, commands[name]().description())
	}
}
