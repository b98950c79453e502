package token

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/workflowpro/qaharness/internal/auth"
	"github.com/workflowpro/qaharness/internal/config"
	promptutils "github.com/workflowpro/qaharness/utils/prompt"
)

// NewTokenCommand builds the `token` subcommand, a debugging aid that
// fetches (or reuses) a tenant token and prints it masked.
func NewTokenCommand(cache *auth.TokenCache, registry *config.TenantRegistry, prompter promptutils.Prompter) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "token [tenant-id]",
		Short: "Obtain and inspect an auth token for a tenant",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := resolveTenant(args, registry, prompter)
			if err != nil {
				return err
			}

			if refresh {
				cache.Invalidate(tenantID)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if _, err := cache.Token(ctx, tenantID); err != nil {
				return err
			}

			tok, ok := cache.Cached(tenantID)
			if !ok {
				return fmt.Errorf("no cached token for tenant %s", tenantID)
			}
			fmt.Printf("Tenant    : %s\n", tok.TenantID)
			fmt.Printf("User      : %s\n", tok.UserEmail)
			fmt.Printf("Token     : %s\n", maskToken(tok.AccessToken))
			fmt.Printf("Issued    : %s\n", tok.IssuedAt.Format(time.RFC3339))
			fmt.Printf("Expires   : %s\n", tok.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "discard any cached token and log in again")
	return cmd
}

func resolveTenant(args []string, registry *config.TenantRegistry, prompter promptutils.Prompter) (string, error) {
	if len(args) == 1 {
		if _, err := registry.Get(args[0]); err != nil {
			return "", err
		}
		return args[0], nil
	}
	return prompter.PromptForSelection("Select tenant", registry.IDs())
}

// maskToken keeps just enough of the token to correlate it with server
// logs.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
