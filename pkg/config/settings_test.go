package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokenwire/tokenwire/pkg/config"
	"gotest.tools/assert"
)

func TestLoadFromFile_DevServerSection(t *testing.T) {
	path := writeFile(t, "config.yaml", `
port: 6000
dev:
  server:
    listen: "127.0.0.1:6000"
    secret: env:DEV_SECRET
    advertise: true
`)

	cfg, err := config.LoadFromFile[config.Settings](path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Dev)
	require.NotNil(t, cfg.Dev.Server)
	assert.Equal(t, "127.0.0.1:6000", cfg.Dev.Server.Listen)
	assert.Equal(t, "env:DEV_SECRET", cfg.Dev.Server.Secret)
	assert.Equal(t, true, cfg.Dev.Server.Advertise)
	require.NoError(t, cfg.Validate())
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings config.Settings
		wantErr  string
	}{
		{name: "empty", settings: config.Settings{}},
		{name: "valid", settings: config.Settings{Port: 51001, Timeout: "750ms", Output: "hex"}},
		{name: "port", settings: config.Settings{Port: 70000}, wantErr: "port 70000 out of range"},
		{name: "timeout unit", settings: config.Settings{Timeout: "3"}, wantErr: "timeout:"},
		{name: "timeout zero", settings: config.Settings{Timeout: "0s"}, wantErr: "must be positive"},
		{name: "output", settings: config.Settings{Output: "xml"}, wantErr: `output "xml"`},
		{
			name:     "inline secret",
			settings: config.Settings{Dev: &config.DevSettings{Server: &config.DevServerSettings{Secret: strings.Repeat("k", 65)}}},
			wantErr:  "dev.server.secret longer than 64 bytes",
		},
		{
			name:     "secret reference",
			settings: config.Settings{Dev: &config.DevSettings{Server: &config.DevServerSettings{Secret: "file:/" + strings.Repeat("k", 80)}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
