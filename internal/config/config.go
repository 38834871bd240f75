package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyDatabasePath     = "database.path"
	KeyOperatorID       = "operator.id"
	KeyClientScope      = "import.client_scope"
	KeyDiagnosticsLimit = "import.diagnostics_limit"
	KeyDryRun           = "import.dry_run"
	KeyRetryAttempts    = "import.retry_attempts"
	KeyServerAddr       = "server.addr"
	KeyLogLevel         = "logging.level"
	KeyLogFormat        = "logging.format"
)

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, filepath.Join(DataDir(), "polsync.db"))
	v.SetDefault(KeyDiagnosticsLimit, 20)
	v.SetDefault(KeyRetryAttempts, 3)
	v.SetDefault(KeyServerAddr, ":8080")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Import holds the settings of an import run.
type Import struct {
	OperatorID       string
	ClientScope      string
	DiagnosticsLimit int
	RetryAttempts    int
	DryRun           bool
}

// Settings is the typed application configuration.
type Settings struct {
	DatabasePath string
	ServerAddr   string
	LogLevel     string
	LogFormat    string
	Import       Import
}

// Load reads typed settings from v.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		DatabasePath: ExpandPath(strings.TrimSpace(v.GetString(KeyDatabasePath))),
		ServerAddr:   v.GetString(KeyServerAddr),
		LogLevel:     strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:    strings.ToLower(v.GetString(KeyLogFormat)),
		Import: Import{
			OperatorID:       strings.TrimSpace(v.GetString(KeyOperatorID)),
			ClientScope:      strings.TrimSpace(v.GetString(KeyClientScope)),
			DiagnosticsLimit: v.GetInt(KeyDiagnosticsLimit),
			RetryAttempts:    v.GetInt(KeyRetryAttempts),
			DryRun:           v.GetBool(KeyDryRun),
		},
	}

	switch {
	case s.DatabasePath == "":
		return nil, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	case s.Import.DiagnosticsLimit <= 0:
		return nil, fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyDiagnosticsLimit)
	case s.Import.RetryAttempts <= 0:
		return nil, fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyRetryAttempts)
	}
	if _, err := common.ParseLevel(s.LogLevel); err != nil {
		return nil, err
	}
	return s, nil
}
