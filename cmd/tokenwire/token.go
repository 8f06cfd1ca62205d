package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tokenwire/tokenwire/pkg/wire"
)

type ItrCLI struct {
	ID    string `arg:"" help:"Identifier, up to 12 characters"`
	Nonce string `arg:"" help:"Unsigned 32-bit nonce"`
}

func (c *ItrCLI) Run(g *Globals, logger *slog.Logger, ctx context.Context, out io.Writer) error {
	nonce, err := wire.ParseNonce(c.Nonce)
	if err != nil {
		return err
	}
	if len(c.ID) > wire.IDSize {
		logger.Warn("identifier truncated", "id", c.ID, "max", wire.IDSize)
	}

	r, err := g.renderer(out)
	if err != nil {
		return err
	}
	cl, err := g.client(ctx, logger)
	if err != nil {
		return err
	}

	resp, err := cl.RequestIndividualToken(ctx, c.ID, nonce)
	if err != nil {
		return err
	}
	return r.Render(resp)
}

type ItvCLI struct {
	SAS string `arg:"" help:"SAS as id:nonce:token, or a secret reference (env:, file:, ssm:, secretsmanager:, s3://)"`
}

func (c *ItvCLI) Run(g *Globals, logger *slog.Logger, ctx context.Context, out io.Writer) error {
	values, err := g.resolve(ctx, c.SAS)
	if err != nil {
		return err
	}
	if !wire.IsASCII(values[0]) {
		logger.Warn("SAS contains non-ASCII characters; the server may reject it")
	}
	sas, err := wire.ParseSAS(values[0])
	if err != nil {
		return err
	}

	r, err := g.renderer(out)
	if err != nil {
		return err
	}
	cl, err := g.client(ctx, logger)
	if err != nil {
		return err
	}

	status, err := cl.ValidateIndividualToken(ctx, sas)
	if err != nil {
		return err
	}
	return r.Render(status)
}

type GtrCLI struct {
	N   int      `arg:"" help:"Number of SAS that follow"`
	SAS []string `arg:"" optional:"" help:"SAS as id:nonce:token, or secret references"`
}

func (c *GtrCLI) Run(g *Globals, logger *slog.Logger, ctx context.Context, out io.Writer) error {
	if c.N < 0 || c.N > wire.MaxEntries {
		return fmt.Errorf("N must be between 0 and %d, got %d", wire.MaxEntries, c.N)
	}
	if len(c.SAS) != c.N {
		return fmt.Errorf("expected %d SAS, got %d", c.N, len(c.SAS))
	}

	values, err := g.resolve(ctx, c.SAS...)
	if err != nil {
		return err
	}
	entries := make([]wire.SAS, 0, len(values))
	for _, v := range values {
		if !wire.IsASCII(v) {
			logger.Warn("SAS contains non-ASCII characters; the server may reject it", "sas", v)
		}
		sas, err := wire.ParseSAS(v)
		if err != nil {
			return err
		}
		entries = append(entries, sas)
	}

	r, err := g.renderer(out)
	if err != nil {
		return err
	}
	cl, err := g.client(ctx, logger)
	if err != nil {
		return err
	}

	resp, err := cl.RequestGroupToken(ctx, entries)
	if err != nil {
		return err
	}
	return r.Render(resp)
}

type GtvCLI struct {
	GAS string `arg:"" help:"GAS as sas+sas+...+token, or a secret reference"`
}

func (c *GtvCLI) Run(g *Globals, logger *slog.Logger, ctx context.Context, out io.Writer) error {
	values, err := g.resolve(ctx, c.GAS)
	if err != nil {
		return err
	}
	gas, err := wire.ParseGAS(values[0])
	if err != nil {
		return err
	}

	r, err := g.renderer(out)
	if err != nil {
		return err
	}
	cl, err := g.client(ctx, logger)
	if err != nil {
		return err
	}

	status, err := cl.ValidateGroupToken(ctx, gas)
	if err != nil {
		return err
	}
	return r.Render(status)
}
