package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/tokenwire/tokenwire/pkg/devserver"
	"github.com/tokenwire/tokenwire/pkg/discovery"
)

type DevCLI struct {
	Server DevServerCLI `cmd:"server" help:"Run a development token server"`
}

type DevServerCLI struct {
	Listen    string `help:"Address to listen on" short:"l" default:"127.0.0.1:51001"`
	Secret    string `help:"Signing key, up to 64 bytes, or a secret reference (random when empty)" env:"TOKENWIRE_DEV_SECRET"`
	Advertise bool   `help:"Advertise the server over mDNS"`
	Name      string `help:"mDNS instance name" default:"tokenwire-dev"`
}

func (d *DevServerCLI) Run(g *Globals, logger *slog.Logger, ctx context.Context) error {
	logger.Debug("dev server command called", "listen", d.Listen, "advertise", d.Advertise)

	secret := d.Secret
	if secret != "" {
		values, err := g.resolve(ctx, secret)
		if err != nil {
			return err
		}
		secret = values[0]
	} else {
		logger.Warn("no --secret given; tokens will not survive a restart")
	}

	srv, err := devserver.New([]byte(secret), logger)
	if err != nil {
		return fmt.Errorf("unable to create dev server: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ready := make(chan net.Addr, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe(ctx, d.Listen, ready)
	}()

	select {
	case err := <-errc:
		return err
	case addr := <-ready:
		if d.Advertise {
			port := addr.(*net.UDPAddr).Port
			mdns, err := discovery.Advertise(d.Name, port)
			if err != nil {
				cancel()
				<-errc
				return err
			}
			defer mdns.Shutdown()
			logger.Info("mDNS registered", "name", d.Name, "service", discovery.Service, "port", port)
		}
	}

	return <-errc
}
