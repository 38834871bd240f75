package main

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Veraticus/policy-sync/internal/api"
	"github.com/Veraticus/policy-sync/internal/certs"
	"github.com/Veraticus/policy-sync/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the import API for the back-office UI",
		Long: `Serve uploads, templates and reports over HTTP.

Every request names its operator in the X-Operator-ID header. Put the server
behind the back office's authenticating proxy; it trusts the header as given.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed certificate")
	cmd.Flags().StringSlice("tls-host", []string{"localhost", "127.0.0.1"}, "host names and addresses the certificate covers")
	_ = viper.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	server, err := api.NewServer(store, engineOptions(settings, nil), slog.Default())
	if err != nil {
		return err
	}

	var tlsConfig *tls.Config
	if useTLS, _ := cmd.Flags().GetBool("tls"); useTLS {
		hosts, _ := cmd.Flags().GetStringSlice("tls-host")
		manager, err := certs.NewFileManager(filepath.Join(config.DataDir(), "certs"), hosts...)
		if err != nil {
			return err
		}
		if tlsConfig, err = certs.TLSConfig(manager); err != nil {
			return fmt.Errorf("failed to prepare TLS certificate: %w", err)
		}
	}

	slog.Info("Starting API server", "addr", settings.ServerAddr, "database", settings.DatabasePath)
	return server.ListenAndServe(ctx, settings.ServerAddr, tlsConfig)
}
