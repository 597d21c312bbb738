package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/pbot/internal"
	"github.com/rios0rios0/pbot/internal/infrastructure/controllers"
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "pbot",
		Short: "Dependency upgrade bot for .NET and Terraform repositories",
		Long: `Scans a local repository for NuGet package references and Terraform
registry modules, decides which ones can be upgraded, and opens one
change request per update group on GitHub, GitLab or Azure DevOps.

Ignore conditions are read from {ignore_conditions}/{repository}/{dependency}/{condition},
where a condition is "all", "N.x" or "N.M.x".`,
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect .pbot.yaml)")
	cmd.PersistentFlags().String("token", "",
		"Auth token for the Git provider (overrides config and env var detection)")
	cmd.PersistentFlags().Bool("dry-run", false,
		"Commit locally but do not push or open change requests")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Args:  cobra.NoArgs,
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}

		if uc, ok := ctrl.(*controllers.UpdateController); ok {
			uc.AddFlags(subCmd)
		}

		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	cobraRoot := buildRootCommand()
	addSubcommands(cobraRoot, injectAppContext())

	if err := cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'pbot': %s", err)
	}
}
