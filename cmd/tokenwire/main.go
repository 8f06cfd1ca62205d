package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/tokenwire/tokenwire/pkg/config"
	"github.com/tokenwire/tokenwire/pkg/wire"
	"golang.org/x/term"
)

type CLI struct {
	Globals

	Verbose int             `help:"Increase log verbosity (-v info, -vv debug)" short:"v" type:"counter"`
	Config  kong.ConfigFlag `help:"Configuration file (YAML, JSON, CUE or TOML)" short:"c"`

	Itr ItrCLI `cmd:"itr" help:"Request an individual token for an identifier and nonce"`
	Itv ItvCLI `cmd:"itv" help:"Validate a SAS (id:nonce:token)"`
	Gtr GtrCLI `cmd:"gtr" help:"Request a group token for N SAS"`
	Gtv GtvCLI `cmd:"gtv" help:"Validate a GAS (sas+sas+...+token)"`
	Dev DevCLI `cmd:"dev" help:"Development tools"`

	ConfigCmd ConfigCLI `cmd:"config" name:"config" help:"Inspect configuration files"`
}

var defaultConfigPaths = []string{
	"~/.tokenwire/config.yaml",
	"~/.tokenwire/config.json",
	"~/.tokenwire/config.cue",
	"~/.tokenwire/config.toml",
}

func main() {
	var cli CLI
	parser, err := newParser(&cli, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logger := newLogger(os.Stderr, cli.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = run(ctx, kctx, &cli, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(exitCode(err))
}

func newParser(cli *CLI, out io.Writer, options ...kong.Option) (*kong.Kong, error) {
	return kong.New(cli, append([]kong.Option{
		kong.Name("tokenwire"),
		kong.Description("Request and validate access tokens over UDP"),
		kong.UsageOnError(),
		kong.Configuration(config.Loader, defaultConfigPaths...),
		kong.BindTo(out, (*io.Writer)(nil)),
	}, options...)...)
}

func run(ctx context.Context, kctx *kong.Context, cli *CLI, logger *slog.Logger) error {
	kctx.BindTo(ctx, (*context.Context)(nil))
	return kctx.Run(&cli.Globals, logger)
}

func newLogger(w *os.File, verbosity int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity == 1:
		level = slog.LevelInfo
	case verbosity >= 2:
		level = slog.LevelDebug
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    !term.IsTerminal(int(w.Fd())),
	}))
}

// exitCode maps a command error to the process status: 0 on success, 2 when
// the server answered with an error packet and 1 for everything else.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var serverErr *wire.ServerError
	if errors.As(err, &serverErr) {
		return 2
	}
	return 1
}
