// Package discovery finds token servers on the local network with mDNS.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/grandcat/zeroconf"
)

const (
	// Service is the DNS-SD service type token servers register.
	Service = "_tokenwire._udp"

	// Domain is the mDNS domain.
	Domain = "local."
)

// ErrNotFound indicates no server answered before the context ended.
var ErrNotFound = errors.New("discovery: no token server found")

// Browser is the part of *zeroconf.Resolver used by Find.
type Browser interface {
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// Advertise registers a token server listening on port under name. Call
// Shutdown on the result to withdraw it.
func Advertise(name string, port int) (*zeroconf.Server, error) {
	server, err := zeroconf.Register(name, Service, Domain, port, []string{"txtvers=1", "proto=tokenwire"}, nil)
	if err != nil {
		return nil, fmt.Errorf("mDNS registration failed: %w", err)
	}
	return server, nil
}

// Find returns host:port of the first token server that answers.
func Find(ctx context.Context) (string, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("create mDNS resolver: %w", err)
	}
	return FindWith(ctx, resolver)
}

// FindWith is Find with a custom browser.
func FindWith(ctx context.Context, browser Browser) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := browser.Browse(ctx, Service, Domain, entries); err != nil {
		return "", fmt.Errorf("browse %s: %w", Service, err)
	}

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return "", ErrNotFound
			}
			if addr, ok := Address(entry); ok {
				return addr, nil
			}
		case <-ctx.Done():
			return "", ErrNotFound
		}
	}
}

// Address returns host:port for an entry, preferring IPv4.
func Address(entry *zeroconf.ServiceEntry) (string, bool) {
	if entry == nil || entry.Port == 0 {
		return "", false
	}
	var ip net.IP
	switch {
	case len(entry.AddrIPv4) > 0:
		ip = entry.AddrIPv4[0]
	case len(entry.AddrIPv6) > 0:
		ip = entry.AddrIPv6[0]
	default:
		return "", false
	}
	return net.JoinHostPort(ip.String(), strconv.Itoa(entry.Port)), true
}
