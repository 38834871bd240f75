package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/policy-sync/internal/cli"
	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/Veraticus/policy-sync/internal/service"
	"github.com/spf13/cobra"
)

func companiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "Manage the insurance company list",
		Long: `Imports resolve company names against this list and never add to it.
Add a company here before importing its exports.`,
		RunE: runCompaniesList,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List insurance companies",
		RunE:  runCompaniesList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add an insurance company",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompaniesAdd,
	})

	return cmd
}

func runCompaniesList(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	companies, err := store.GetCompanies(cmd.Context())
	if err != nil {
		return err
	}
	if len(companies) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No companies yet. Add one with 'polsync companies add <name>'."))
		return nil
	}

	rows := make([][]string, 0, len(companies))
	for _, c := range companies {
		rows = append(rows, []string{c.Name, c.ID})
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Company", "ID"}, rows))
	return nil
}

func runCompaniesAdd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return common.NewUserError("company name cannot be empty", nil)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	company, err := store.CreateCompany(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("failed to add company %q: %w", name, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s (%s)", company.Name, company.ID)))
	return nil
}

func clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List the operator's clients",
		RunE:  runClients,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the operator's clients",
		RunE:  runClients,
	})
	return cmd
}

func runClients(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	ic, err := importContext(cmd.Context(), settings)
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	clients, err := store.GetClients(cmd.Context(), ic.OperatorID)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{c.Name, c.NationalID, c.TaxID, c.ID})
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Client", "TCKN", "VKN", "ID"}, rows))
	return nil
}

func policiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List the operator's policies",
		RunE:  runPolicies,
	}
	cmd.PersistentFlags().Bool("all", false, "include archived policies")
	cmd.PersistentFlags().String("client", "", "only policies of this client id")
	cmd.PersistentFlags().String("number", "", "only policies with this number")
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the operator's policies",
		RunE:  runPolicies,
	})
	return cmd
}

func runPolicies(cmd *cobra.Command, _ []string) error {
	all, _ := cmd.Flags().GetBool("all")
	clientID, _ := cmd.Flags().GetString("client")
	number, _ := cmd.Flags().GetString("number")

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	ic, err := importContext(cmd.Context(), settings)
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	companies, err := store.GetCompanies(cmd.Context())
	if err != nil {
		return err
	}
	names := make(map[string]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.Name
	}

	policies, err := store.GetPolicies(cmd.Context(), service.PolicyFilter{
		OwnerID:         ic.OperatorID,
		ClientID:        clientID,
		PolicyNumber:    number,
		IncludeArchived: all,
	})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(policies))
	for _, p := range policies {
		rows = append(rows, []string{
			p.PolicyNumber,
			names[p.CompanyID],
			string(p.Type),
			p.StartDate.Format(time.DateOnly),
			p.EndDate.Format(time.DateOnly),
			p.Premium.StringFixed(2),
			string(p.Status),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(
		[]string{"Number", "Company", "Type", "Start", "End", "Premium", "Status"}, rows))
	return nil
}
