package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/tokenwire/tokenwire/pkg/client"
	"github.com/tokenwire/tokenwire/pkg/discovery"
	"github.com/tokenwire/tokenwire/pkg/display"
	"github.com/tokenwire/tokenwire/pkg/secretsource"
)

// Globals are the flags shared by every request command.
type Globals struct {
	Host     string        `help:"Token server host" short:"H" env:"TOKENWIRE_HOST" default:"localhost"`
	Port     int           `help:"Token server port" short:"p" env:"TOKENWIRE_PORT" default:"51001"`
	Timeout  time.Duration `help:"How long to wait for a reply" short:"t" env:"TOKENWIRE_TIMEOUT" default:"3s"`
	Discover bool          `help:"Find the token server with mDNS instead of --host/--port"`
	Output   string        `help:"Output format" short:"o" enum:"text,json,hex" default:"text"`
	Template string        `help:"Mustache template for text output"`
	Dump     bool          `help:"Hex dump request and reply datagrams to stderr"`
}

// address returns host:port of the server, discovering it when asked.
func (g *Globals) address(ctx context.Context, logger *slog.Logger) (string, error) {
	if !g.Discover {
		return net.JoinHostPort(g.Host, strconv.Itoa(g.Port)), nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()
	addr, err := discovery.Find(ctx)
	if err != nil {
		return "", err
	}
	logger.Info("discovered token server", "address", addr)
	return addr, nil
}

func (g *Globals) client(ctx context.Context, logger *slog.Logger) (*client.Client, error) {
	addr, err := g.address(ctx, logger)
	if err != nil {
		return nil, err
	}

	var exchangeLogger client.ExchangeLogger = client.NewSlogExchangeLogger(logger)
	if g.Dump {
		exchangeLogger = client.NewMultiExchangeLogger(exchangeLogger, &dumpLogger{w: os.Stderr})
	}

	return client.New(addr,
		client.WithTimeout(g.Timeout),
		client.WithLogger(logger),
		client.WithExchangeLogger(exchangeLogger),
	)
}

func (g *Globals) renderer(out io.Writer) (*display.Renderer, error) {
	return display.New(out, display.Format(g.Output), g.Template)
}

// resolve expands secret references in command arguments.
func (g *Globals) resolve(ctx context.Context, values ...string) ([]string, error) {
	return secretsource.New().ResolveAll(ctx, values)
}

// dumpLogger writes each exchange as titled hex dumps.
type dumpLogger struct {
	w io.Writer
}

func (d *dumpLogger) LogExchange(ctx context.Context, event *client.ExchangeEvent) error {
	display.Title(d.w, fmt.Sprintf("%s (%d bytes)", event.Kind, len(event.Request)))
	display.HexDump(d.w, event.Request)
	if event.Reply != nil {
		display.Title(d.w, fmt.Sprintf("%s (%d bytes)", event.ReplyKind, len(event.Reply)))
		display.HexDump(d.w, event.Reply)
	}
	return nil
}
