package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/mcncl/jsonlens/internal/classifier"
	"github.com/mcncl/jsonlens/internal/config"
	"github.com/mcncl/jsonlens/internal/errors"
	"github.com/mcncl/jsonlens/internal/formatter"
	"github.com/mcncl/jsonlens/internal/logging"
	"github.com/mcncl/jsonlens/internal/parser"
	"github.com/mcncl/jsonlens/internal/server"
	"github.com/mcncl/jsonlens/internal/tools"
)

// CLI defines the command-line interface
var CLI struct {
	Config  string `help:"Path to config file. Defaults to the nearest .jsonlens.yml." short:"c" type:"path"`
	Format  string `help:"Output format: json, pretty or text." short:"f"`
	NoColor bool   `help:"Disable colored text output." name:"no-color"`
	Debug   bool   `help:"Enable debug logging." short:"d"`

	Diff    DiffCmd    `cmd:"" help:"Print the structural diff between two JSON documents."`
	Fields  FieldsCmd  `cmd:"" help:"List the paths of string fields that hold human-readable text."`
	Serve   ServeCmd   `cmd:"" help:"Host the tools over JSON lines on stdin and stdout."`
	Tools   ToolsCmd   `cmd:"" help:"List the available tools."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Context holds the runtime context shared by commands
type Context struct {
	Config    *config.Config
	Logger    *zap.Logger
	Registry  *tools.Registry
	Formatter *formatter.Formatter
	Stdin     io.Reader
	Stdout    io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("jsonlens"),
		kong.Description("Structural JSON diffs and human-text field detection"),
		kong.UsageOnError(),
	)

	rctx, err := newContext(os.Stdin, os.Stdout)
	if err == nil {
		defer func() { _ = rctx.Logger.Sync() }()
		err = kctx.Run(rctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonlens --help\n")
		os.Exit(1)
	}
}

// newContext loads configuration with CLI overrides and builds the shared
// components.
func newContext(stdin io.Reader, stdout io.Writer) (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, CLI.Format, CLI.NoColor, CLI.Debug)
	if err != nil {
		return nil, errors.NewInputError("failed to load configuration", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, errors.NewInputError("failed to initialize logging", err)
	}
	if configPath != "" {
		logger.Debug("Loaded configuration", zap.String("path", configPath))
	}

	return buildContext(cfg, logger, stdin, stdout), nil
}

func buildContext(cfg *config.Config, logger *zap.Logger, stdin io.Reader, stdout io.Writer) *Context {
	return &Context{
		Config:    cfg,
		Logger:    logger,
		Registry:  tools.NewDefaultRegistry(cfg, logger),
		Formatter: formatter.NewFormatter(cfg.Output),
		Stdin:     stdin,
		Stdout:    stdout,
	}
}

// DiffCmd prints the operations turning ORIGINAL into UPDATED
type DiffCmd struct {
	Original string `arg:"" help:"Original JSON file, or - for stdin."`
	Updated  string `arg:"" help:"Updated JSON file, or - for stdin."`
}

func (c *DiffCmd) Run(ctx *Context) error {
	if c.Original == "-" && c.Updated == "-" {
		return errors.NewInputError("only one of the documents can be read from stdin", errors.ErrInvalidFilePath)
	}
	original, err := readInput(ctx, c.Original)
	if err != nil {
		return err
	}
	updated, err := readInput(ctx, c.Updated)
	if err != nil {
		return err
	}

	result, err := ctx.Registry.Call(context.Background(), tools.JSONDiffName, map[string]string{
		"originalJson": original,
		"updatedJson":  updated,
	})
	if err != nil {
		return err
	}

	out, err := ctx.Formatter.FormatDiff(result)
	if err != nil {
		return errors.NewOutputError("failed to format diff", err)
	}
	return writeOutput(ctx, out)
}

// FieldsCmd lists human-readable string fields of INPUT
type FieldsCmd struct {
	Input   string `arg:"" optional:"" default:"-" help:"JSON file, or - for stdin."`
	Explain bool   `help:"Show the verdict and deciding rule for every string field." short:"e"`
}

func (c *FieldsCmd) Run(ctx *Context) error {
	document, err := readInput(ctx, c.Input)
	if err != nil {
		return err
	}

	if c.Explain {
		root, err := parser.ParseString(document)
		if err != nil {
			// Reported in-band like the plain listing.
			return c.listFields(ctx, document)
		}
		verdicts, err := classifier.New(ctx.Config.Classifier).ExplainAll(context.Background(), root)
		if err != nil {
			return err
		}
		out, err := ctx.Formatter.FormatVerdicts(verdicts)
		if err != nil {
			return errors.NewOutputError("failed to format verdicts", err)
		}
		return writeOutput(ctx, out)
	}
	return c.listFields(ctx, document)
}

func (c *FieldsCmd) listFields(ctx *Context, document string) error {
	result, err := ctx.Registry.Call(context.Background(), tools.HumanFieldsName, map[string]string{
		"originalJson": document,
	})
	if err != nil {
		return err
	}

	out, err := ctx.Formatter.FormatFields(result)
	if err != nil {
		return errors.NewOutputError("failed to format fields", err)
	}
	return writeOutput(ctx, out)
}

// ServeCmd runs the stdio tool host until stdin closes or a signal arrives
type ServeCmd struct{}

func (c *ServeCmd) Run(ctx *Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := server.New(ctx.Registry, ctx.Logger, ctx.Config.Serve.Concurrency)
	err := s.Serve(sigCtx, ctx.Stdin, ctx.Stdout)
	if sigCtx.Err() != nil {
		// Interrupted by a signal; in-flight calls have been answered.
		return nil
	}
	return err
}

// ToolsCmd lists registered tools
type ToolsCmd struct{}

func (c *ToolsCmd) Run(ctx *Context) error {
	out, err := ctx.Formatter.FormatTools(ctx.Registry.List())
	if err != nil {
		return errors.NewOutputError("failed to format tool list", err)
	}
	return writeOutput(ctx, out)
}

// VersionCmd prints the version
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *Context) error {
	return writeOutput(ctx, fmt.Sprintf("jsonlens version %s", Version))
}

// readInput reads a document from a file path, or from stdin for "-"
func readInput(ctx *Context, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(ctx.Stdin)
		if err != nil {
			return "", errors.NewInputError("failed to read from stdin", err)
		}
		return string(data), nil
	}

	data, err := parser.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeOutput writes a result line to stdout
func writeOutput(ctx *Context, out string) error {
	if _, err := fmt.Fprintln(ctx.Stdout, strings.TrimSpace(out)); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
