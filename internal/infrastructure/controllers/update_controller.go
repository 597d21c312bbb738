package controllers

import (
	"context"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/pbot/internal/domain/commands"
	"github.com/rios0rios0/pbot/internal/domain/entities"
)

// UpdateController handles the "update" subcommand.
type UpdateController struct {
	command commands.Update
}

// NewUpdateController creates a new UpdateController.
func NewUpdateController(command commands.Update) *UpdateController {
	return &UpdateController{command: command}
}

// GetBind returns the Cobra command metadata for the update controller.
func (it *UpdateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "update",
		Short: "Open upgrade change requests for a local repository",
		Long: `Scan a local Git working tree for package and module declarations,
find newer versions on the configured feeds, and open one change request
per update group.

Groups whose branch already exists on the remote are left alone, so the
command is safe to run repeatedly from a scheduled job.`,
	}
}

// Execute runs the update pipeline.
func (it *UpdateController) Execute(cmd *cobra.Command, _ []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, _ := cmd.Flags().GetString("config")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")
	token, _ := cmd.Flags().GetString("token")
	path, _ := cmd.Flags().GetString("path")

	settings, err := loadSettings(configPath)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}
	if path != "" {
		settings.Repository.Path = path
	}

	if token == "" {
		token = settings.Provider.Token
	}
	if token == "" {
		token = resolveTokenFromEnv(settings.Provider.Type)
	}

	if _, runErr := it.command.Execute(ctx, settings, commands.UpdateOptions{
		DryRun:  dryRun,
		Verbose: verbose,
		Token:   token,
	}); runErr != nil {
		logger.Errorf("Update failed: %v", runErr)
	}
}

// AddFlags adds the update-specific flags to the given Cobra command.
func (it *UpdateController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("path", "", "Path to the working tree (default: repository.path or .)")
}

// loadSettings reads the given config file, or the first one found in the default
// locations. Without any file the built-in defaults apply.
func loadSettings(configPath string) (*entities.Settings, error) {
	if configPath == "" {
		found, err := entities.FindConfigFile()
		if err != nil {
			logger.Debugf("No config file found, using defaults: %v", err)
			return entities.DefaultSettings(), nil
		}
		configPath = found
	}

	logger.Infof("Using config file: %s", configPath)
	return entities.NewSettings(configPath)
}

// resolveTokenFromEnv returns the first non-empty token variable for the provider.
// An unknown provider tries every known variable.
func resolveTokenFromEnv(providerType string) string {
	var names []string
	switch providerType {
	case "github":
		names = []string{"GITHUB_TOKEN", "GH_TOKEN"}
	case "gitlab":
		names = []string{"GITLAB_TOKEN", "GL_TOKEN"}
	case "azuredevops":
		names = []string{"AZURE_DEVOPS_PAT"}
	default:
		names = []string{"GITHUB_TOKEN", "GH_TOKEN", "GITLAB_TOKEN", "GL_TOKEN", "AZURE_DEVOPS_PAT"}
	}

	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			return val
		}
	}
	return ""
}
