package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/policy-sync/internal/cli"
	"github.com/Veraticus/policy-sync/internal/config"
	"github.com/Veraticus/policy-sync/internal/documents"
	"github.com/Veraticus/policy-sync/internal/reconcile"
	"github.com/Veraticus/policy-sync/internal/sheets"
	"github.com/Veraticus/policy-sync/internal/tabular"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import policies, claims or policy documents",
		Long: `Import an insurance company export into the agency database.

Files may be .xlsx, .xls or .csv. With --sheet the table is read from the
configured Google spreadsheet instead, using the given A1 range.`,
	}

	cmd.PersistentFlags().String("client", "", "import every row for this client id")
	cmd.PersistentFlags().Bool("dry-run", false, "decide every row without writing anything")
	_ = viper.BindPFlag(config.KeyClientScope, cmd.PersistentFlags().Lookup("client"))
	_ = viper.BindPFlag(config.KeyDryRun, cmd.PersistentFlags().Lookup("dry-run"))

	cmd.AddCommand(importTableCmd("policies", "Import a policy export"))
	cmd.AddCommand(importTableCmd("claims", "Import a claim export"))
	cmd.AddCommand(importDocumentsCmd())

	return cmd
}

func importTableCmd(kind, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind + " [file]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportTable(cmd, kind, args)
		},
	}
	cmd.Flags().String("sheet", "", "read from the configured spreadsheet range, e.g. 'Poliçeler!A1:Z'")
	return cmd
}

func runImportTable(cmd *cobra.Command, kind string, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	sheetRange, _ := cmd.Flags().GetString("sheet")
	if (len(args) == 0) == (sheetRange == "") {
		return fmt.Errorf("give either a file or --sheet")
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	ic, err := importContext(ctx, settings)
	if err != nil {
		return err
	}

	table, err := readTable(ctx, args, sheetRange)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	progress := cli.NewProgress(cmd.ErrOrStderr(), "Importing "+kind)
	engine := reconcile.NewEngine(store, engineOptions(settings, progress))

	slog.Info("Starting import", "kind", kind, "source", table.Source, "rows", len(table.Rows),
		"operator", ic.OperatorID, "dry_run", settings.Import.DryRun)

	var out *reconcile.Outcome
	switch kind {
	case "policies":
		out, err = engine.ImportPolicies(ctx, table, ic)
	default:
		out, err = engine.ImportClaims(ctx, table, ic)
	}
	if out != nil {
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderOutcome(titleFor(kind), out))
	}
	if err != nil {
		if handler.WasInterrupted() {
			return fmt.Errorf("import interrupted: %w", err)
		}
		return err
	}
	return nil
}

func readTable(ctx context.Context, args []string, sheetRange string) (*tabular.Table, error) {
	if sheetRange == "" {
		return tabular.ReadFile(config.ExpandPath(args[0]))
	}

	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return nil, fmt.Errorf("google sheets is not configured: %w", err)
	}
	reader, err := sheets.NewReader(ctx, *sheetsConfig, slog.Default())
	if err != nil {
		return nil, err
	}
	return reader.ReadTable(ctx, sheetRange)
}

func titleFor(kind string) string {
	switch kind {
	case "policies":
		return "Policy import"
	case "claims":
		return "Claim import"
	}
	return "Document import"
}

func importDocumentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "documents <file or directory>...",
		Short: "Attach policy documents by file name or PDF text",
		Long: `Attach scanned policy documents to stored policies.

Each file is matched to a policy by the policy number in its name. PDFs whose
name carries no known number are searched by their text instead. Directories
are walked recursively.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportDocuments,
	}
}

func runImportDocuments(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	ic, err := importContext(ctx, settings)
	if err != nil {
		return err
	}

	paths, err := collectFiles(args)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	progress := cli.NewProgress(cmd.ErrOrStderr(), "Matching documents")
	matcher := documents.NewMatcher(reconcile.NewEngine(store, engineOptions(settings, progress)))

	out, err := matcher.Attach(ctx, paths, ic)
	if out != nil {
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderOutcome(titleFor("documents"), out))
	}
	return err
}

// collectFiles expands directories into the regular files below them.
func collectFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		arg = config.ExpandPath(arg)
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	return paths, nil
}
