package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andywolf/release-drafter/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective release-drafter configuration",
	Long: `Load the release-drafter document of the repository, follow its _extends
chain, apply the defaults and print the result as YAML.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	logger, err := newLogger(ctx, cmd.ErrOrStderr(), settings, uuid.New().String())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	client, err := newGitHubClient(ctx, settings, logger)
	if err != nil {
		return err
	}

	loaded, err := config.NewLoader(client).Load(ctx, settings.Owner(), settings.Repo(), settings.ConfigName)
	if err != nil {
		logFailure(logger, err)
		return err
	}

	out, err := loaded.Config.YAML()
	if err != nil {
		return err
	}
	for _, source := range loaded.Sources {
		fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n", source)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
