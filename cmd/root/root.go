package root

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cmdRun "github.com/workflowpro/qaharness/cmd/run"
	cmdTenants "github.com/workflowpro/qaharness/cmd/tenants"
	cmdToken "github.com/workflowpro/qaharness/cmd/token"
	"github.com/workflowpro/qaharness/internal/auth"
	"github.com/workflowpro/qaharness/internal/config"
	"github.com/workflowpro/qaharness/internal/report"
	"github.com/workflowpro/qaharness/internal/runner"
	"github.com/workflowpro/qaharness/utils/common"
	promptutils "github.com/workflowpro/qaharness/utils/prompt"
)

var RootCmd = &cobra.Command{
	Use:   "qaharness",
	Short: "WorkFlow Pro test harness",
	Long:  `Runs the WorkFlow Pro end-to-end suites and manages tenant auth tokens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	SilenceUsage: true,
}

func init() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}

	settings := config.LoadSettings()
	fs := afero.NewOsFs()

	registry, err := config.NewTenantRegistry(settings, fs)
	if err != nil {
		fmt.Printf("Error loading tenant registry: %v\n", err)
		return
	}

	tokenCache := auth.NewTokenCache(registry, settings.APIBaseURL(), auth.NewHTTPAuthenticator(logger), logger)
	testRunner := runner.New(&common.RealCommandExecutor{}, settings, logger)
	reportWriter := report.NewWriter(fs, logger)

	RootCmd.AddCommand(
		cmdRun.NewRunCommand(testRunner, reportWriter),
		cmdToken.NewTokenCommand(tokenCache, registry, promptutils.NewPrompt()),
		cmdTenants.NewTenantsCommand(registry, settings),
	)
}
