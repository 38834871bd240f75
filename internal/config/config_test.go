package config

import (
	"path/filepath"
	"testing"

	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/Veraticus/policy-sync/internal/sheets"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/agent")
	t.Setenv("POLSYNC_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", "/home/agent"},
		{"~/db/polsync.db", "/home/agent/db/polsync.db"},
		{"$POLSYNC_TEST_DIR/polsync.db", "/data/polsync.db"},
		{":memory:", ":memory:"},
		{"relative/path", "relative/path"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDirsHonorXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")

	assert.Equal(t, filepath.Join("/xdg/data", "polsync"), DataDir())
	assert.Equal(t, filepath.Join("/xdg/config", "polsync"), ConfigDir())
}

func TestLoad(t *testing.T) {
	t.Setenv("HOME", "/home/agent")

	v := viper.New()
	SetDefaults(v)
	v.Set(KeyDatabasePath, "~/polsync.db")
	v.Set(KeyOperatorID, " agent-1 ")
	v.Set(KeyDryRun, true)
	v.Set(KeyLogLevel, "DEBUG")

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/home/agent/polsync.db", s.DatabasePath)
	assert.Equal(t, "agent-1", s.Import.OperatorID)
	assert.True(t, s.Import.DryRun)
	assert.Equal(t, 20, s.Import.DiagnosticsLimit)
	assert.Equal(t, 3, s.Import.RetryAttempts)
	assert.Equal(t, ":8080", s.ServerAddr)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "console", s.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		want  error
		name  string
		key   string
		value any
	}{
		{name: "empty database path", key: KeyDatabasePath, value: "", want: common.ErrMissingConfig},
		{name: "zero diagnostics limit", key: KeyDiagnosticsLimit, value: 0, want: common.ErrInvalidConfig},
		{name: "negative retries", key: KeyRetryAttempts, value: -1, want: common.ErrInvalidConfig},
		{name: "unknown log level", key: KeyLogLevel, value: "loud", want: common.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "env-client")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "env-secret")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "env-refresh")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "")

	viper.Reset()
	viper.Set("sheets.spreadsheet_id", "sheet-from-config")
	viper.Set("sheets.client_id", "config-client")

	cfg, err := LoadSheetsConfig()
	require.NoError(t, err)
	assert.Equal(t, "config-client", cfg.ClientID)
	assert.Equal(t, "env-secret", cfg.ClientSecret)
	assert.Equal(t, "sheet-from-config", cfg.SpreadsheetID)

	viper.Reset()
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	_, err = LoadSheetsConfig()
	assert.ErrorIs(t, err, sheets.ErrNoAuth)
}
