package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/stretchr/testify/require"
	"github.com/tokenwire/tokenwire/pkg/devserver"
	"github.com/tokenwire/tokenwire/pkg/wire"
)

func testLogger(t *testing.T) *slog.Logger {
	return slog.New(tint.NewHandler(t.Output(), &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "15:04:05",
	}))
}

// startDevServer runs a dev server on loopback and returns its host and port.
func startDevServer(t *testing.T) (string, int) {
	t.Helper()
	srv, err := devserver.New([]byte("cli-test-secret"), testLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(ctx, "127.0.0.1:0", ready)
	}()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	addr := (<-ready).(*net.UDPAddr)
	return addr.IP.String(), addr.Port
}

// execute parses args and runs the selected command, returning stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	var out bytes.Buffer
	parser, err := newParser(&cli, &out, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	err = run(context.Background(), kctx, &cli, testLogger(t))
	return out.String(), err
}

func TestCLI_IndividualRoundTrip(t *testing.T) {
	host, port := startDevServer(t)
	server := []string{"--host", host, "--port", strconv.Itoa(port)}

	out, err := execute(t, append(server, "itr", "alice", "7")...)
	require.NoError(t, err)
	sas := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(sas, "alice:7:"))

	out, err = execute(t, append(server, "itv", sas)...)
	require.NoError(t, err)
	require.Equal(t, "0\n", out)
}

func TestCLI_GroupRoundTrip(t *testing.T) {
	host, port := startDevServer(t)
	server := []string{"--host", host, "--port", strconv.Itoa(port)}

	alice, err := execute(t, append(server, "itr", "alice", "1")...)
	require.NoError(t, err)
	bob, err := execute(t, append(server, "itr", "bob", "2")...)
	require.NoError(t, err)

	gas, err := execute(t, append(server, "gtr", "2", strings.TrimSpace(alice), strings.TrimSpace(bob))...)
	require.NoError(t, err)

	t.Setenv("TEST_GAS", strings.TrimSpace(gas))
	out, err := execute(t, append(server, "--output", "json", "gtv", "env:TEST_GAS")...)
	require.NoError(t, err)
	require.Contains(t, out, `"kind": "GroupTokenStatus"`)
	require.Contains(t, out, `"status": 0`)
}

func TestCLI_GroupCountMismatch(t *testing.T) {
	_, err := execute(t, "gtr", "2", "alice:1:tokA")
	require.EqualError(t, err, "expected 2 SAS, got 1")
}

func TestCLI_ServerErrorExitCode(t *testing.T) {
	host, port := startDevServer(t)

	_, err := execute(t, "--host", host, "--port", strconv.Itoa(port), "gtr", "1", "alice:1:forged")
	var serverErr *wire.ServerError
	require.True(t, errors.As(err, &serverErr))
	require.Equal(t, wire.ErrCodeInvalidSingleToken, serverErr.Code)
	require.Equal(t, 2, exitCode(err))
}

func TestCLI_InvalidNonce(t *testing.T) {
	_, err := execute(t, "itr", "alice", "4294967296")
	require.ErrorIs(t, err, wire.ErrInvalidNonce)
	require.Equal(t, 1, exitCode(err))
}

func TestCLI_MalformedSAS(t *testing.T) {
	_, err := execute(t, "itv", "alice:1")
	require.ErrorIs(t, err, wire.ErrMalformedSAS)
}

func TestCLI_ConfigFile(t *testing.T) {
	host, port := startDevServer(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := "host = \"" + host + "\"\nport = " + strconv.Itoa(port) + "\ntemplate = \"{{id}} got {{{token}}}\"\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0600))

	out, err := execute(t, "--config", path, "itr", "carol", "3")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "carol got "))
}

func TestCLI_ConfigCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := "host = \"tokens.example.com\"\ntimeout = \"750ms\"\n\n[dev.server]\nlisten = \"127.0.0.1:6000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0600))

	out, err := execute(t, "config", "check", path)
	require.NoError(t, err)
	require.Contains(t, out, `"host": "tokens.example.com"`)
	require.Contains(t, out, `"listen": "127.0.0.1:6000"`)
}

func TestCLI_ConfigCheckRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: xml\n"), 0600))

	_, err := execute(t, "config", "check", path)
	require.ErrorContains(t, err, `output "xml"`)
	require.Equal(t, 1, exitCode(err))
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, exitCode(nil))
	require.Equal(t, 1, exitCode(errors.New("boom")))
	require.Equal(t, 2, exitCode(&wire.ServerError{Code: 1}))
}
