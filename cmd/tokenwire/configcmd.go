package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/tokenwire/tokenwire/pkg/config"
)

type ConfigCLI struct {
	Check ConfigCheckCLI `cmd:"check" help:"Load a configuration file and print the settings it defines"`
}

type ConfigCheckCLI struct {
	Path string `arg:"" help:"Configuration file, or a directory holding a CUE package" type:"path"`
}

func (c *ConfigCheckCLI) Run(logger *slog.Logger, out io.Writer) error {
	logger.Debug("config check command called", "path", c.Path)

	settings, err := config.LoadFromFile[config.Settings](c.Path)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration %s: %w", c.Path, err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(settings)
}
