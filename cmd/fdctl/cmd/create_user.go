package cmd

import (
	"fmt"

	"github.com/SscSPs/finance_dashboard/internal/platform/config"
	"github.com/SscSPs/finance_dashboard/internal/repositories/database/pgsql"
	"github.com/spf13/cobra"
)

var createUserOpts struct {
	email    string
	password string
	phone    string
	name     string
}

// createUserCmd adds a local account; only the postgres driver keeps its own users.
var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a local account (postgres driver)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StoreDriver != config.DriverPostgres {
			return fmt.Errorf("create-user needs STORE_DRIVER=%s, got %q", config.DriverPostgres, cfg.StoreDriver)
		}
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		metadata := map[string]any{}
		if createUserOpts.phone != "" {
			metadata["phone"] = createUserOpts.phone
		}
		if createUserOpts.name != "" {
			metadata["name"] = createUserOpts.name
		}

		user, err := pgsql.NewUserRepository(a.backend.Pool).CreateUser(ctx, createUserOpts.email, createUserOpts.phone, createUserOpts.password, metadata)
		if err != nil {
			return fmt.Errorf("create user failed: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), user)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.ID, user.Email)
		return nil
	},
}

func init() {
	addCredentialFlags(createUserCmd, &createUserOpts.email, &createUserOpts.password)
	createUserCmd.Flags().StringVar(&createUserOpts.phone, "phone", "", "phone number the messaging bot files rows under")
	createUserCmd.Flags().StringVar(&createUserOpts.name, "name", "", "display name")
}
