package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/traceops/backend/internal/auth"
	"github.com/traceops/backend/internal/repositories"
	"github.com/traceops/backend/internal/services"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

var userCreateCmd = &cobra.Command{
	Use:   "create [tenant-id] [email]",
	Short: "Create a user in a tenant",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tenantID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid tenant id: %w", err)
		}
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")

		pool, err := openPool(cmd)
		if err != nil {
			return err
		}
		defer pool.Close()

		tokens := auth.TokenIssuer{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, Expiration: cfg.JWTExpiration}
		svc := services.NewAuthService(
			repositories.NewUserRepo(pool),
			repositories.NewTenantRepo(pool),
			repositories.NewAPIKeyRepo(pool),
			tokens,
			log,
		)
		u, err := svc.Register(cmd.Context(), services.RegisterInput{
			TenantID: tenantID,
			Email:    args[1],
			Password: password,
			Role:     role,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		if jsonOutput(cmd) {
			return printJSON(u)
		}
		fmt.Printf("user created: %s %s (%s)\n", u.ID, u.Email, u.Role)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().String("password", "", "initial password")
	userCreateCmd.Flags().String("role", "ADMIN", "ADMIN, AUDITOR or VIEWER")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)
}
