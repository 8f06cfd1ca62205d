package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/tokenwire/tokenwire/pkg/secretsource"
)

// Settings is the typed view of a tokenwire configuration file. Keys match
// flag names with dashes replaced by underscores.
type Settings struct {
	Host     string       `json:"host,omitempty"`
	Port     int          `json:"port,omitempty"`
	Timeout  string       `json:"timeout,omitempty"`
	Output   string       `json:"output,omitempty"`
	Template string       `json:"template,omitempty"`
	Discover bool         `json:"discover,omitempty"`
	Dump     bool         `json:"dump,omitempty"`
	Verbose  int          `json:"verbose,omitempty"`
	Dev      *DevSettings `json:"dev,omitempty"`
}

// DevSettings holds keys scoped to the dev commands.
type DevSettings struct {
	Server *DevServerSettings `json:"server,omitempty"`
}

// DevServerSettings holds keys scoped to "dev server".
type DevServerSettings struct {
	Listen    string `json:"listen,omitempty"`
	Secret    string `json:"secret,omitempty"`
	Advertise bool   `json:"advertise,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Validate reports values that would be rejected when applied to flags.
func (s *Settings) Validate() error {
	var errs []error
	if s.Port < 0 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", s.Port))
	}
	if s.Timeout != "" {
		if d, err := time.ParseDuration(s.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("timeout: %w", err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("timeout %s must be positive", s.Timeout))
		}
	}
	switch s.Output {
	case "", "text", "json", "hex":
	default:
		errs = append(errs, fmt.Errorf("output %q must be one of text, json, hex", s.Output))
	}
	if s.Dev != nil && s.Dev.Server != nil && len(s.Dev.Server.Secret) > 64 && !secretsource.IsReference(s.Dev.Server.Secret) {
		errs = append(errs, errors.New("dev.server.secret longer than 64 bytes"))
	}
	return errors.Join(errs...)
}
