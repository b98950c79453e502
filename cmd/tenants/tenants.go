package tenants

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workflowpro/qaharness/internal/config"
)

// NewTenantsCommand builds the `tenants` subcommand listing the
// configured tenants and their resolved URLs.
func NewTenantsCommand(registry *config.TenantRegistry, settings *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "tenants",
		Short: "List configured tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Environment: %s (API %s)\n\n", settings.Environment, settings.APIBaseURL())
			for _, id := range registry.IDs() {
				tenant, err := registry.Get(id)
				if err != nil {
					return err
				}
				baseURL, err := registry.BaseURL(id)
				if err != nil {
					return err
				}
				fmt.Printf("%-12s %-30s %s\n", tenant.TenantID, baseURL, tenant.AdminEmail)
			}
			return nil
		},
	}
}
