package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/traceops/backend/internal/repositories"
	"github.com/traceops/backend/internal/services"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Tenant management commands",
}

var tenantCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := openPool(cmd)
		if err != nil {
			return err
		}
		defer pool.Close()

		svc := services.NewTenantService(repositories.NewTenantRepo(pool), repositories.NewAPIKeyRepo(pool), log)
		t, err := svc.CreateTenant(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		if jsonOutput(cmd) {
			return printJSON(t)
		}
		fmt.Printf("tenant created: %s (%s)\n", t.ID, t.Name)
		return nil
	},
}

var tenantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := openPool(cmd)
		if err != nil {
			return err
		}
		defer pool.Close()

		svc := services.NewTenantService(repositories.NewTenantRepo(pool), repositories.NewAPIKeyRepo(pool), log)
		tenants, err := svc.ListTenants(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list tenants: %w", err)
		}

		if jsonOutput(cmd) {
			return printJSON(tenants)
		}
		fmt.Printf("%-36s  %-30s  %s\n", "ID", "NAME", "CREATED")
		for _, t := range tenants {
			fmt.Printf("%-36s  %-30s  %s\n", t.ID, t.Name, t.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "API key management commands",
}

var apiKeyCreateCmd = &cobra.Command{
	Use:   "create [tenant-id]",
	Short: "Issue an API key for a tenant",
	Long:  "Issue an API key for a tenant. The raw key is printed once and never stored.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tenantID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid tenant id: %w", err)
		}
		name, _ := cmd.Flags().GetString("name")

		pool, err := openPool(cmd)
		if err != nil {
			return err
		}
		defer pool.Close()

		svc := services.NewTenantService(repositories.NewTenantRepo(pool), repositories.NewAPIKeyRepo(pool), log)
		raw, key, err := svc.CreateAPIKey(cmd.Context(), tenantID, name)
		if err != nil {
			return fmt.Errorf("failed to create api key: %w", err)
		}

		if jsonOutput(cmd) {
			return printJSON(map[string]any{"api_key": raw, "key": key})
		}
		fmt.Printf("api key %s created for tenant %s\n", key.ID, key.TenantID)
		fmt.Println(raw)
		return nil
	},
}

func init() {
	tenantCmd.AddCommand(tenantCreateCmd, tenantListCmd)

	apiKeyCreateCmd.Flags().String("name", "", "label for the key")
	apiKeyCmd.AddCommand(apiKeyCreateCmd)
}
