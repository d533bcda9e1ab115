package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andywolf/release-drafter/internal/config"
	"github.com/andywolf/release-drafter/internal/drafter"
	"github.com/andywolf/release-drafter/internal/logging"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Create or update the draft release",
	Long: `Render the release notes for everything merged since the last release and
create a draft release, or update the existing one.

Example:
  release-drafter draft --repository octo/app --ref refs/heads/main --dry-run
  release-drafter draft --tag v2.0.0-rc.1 --prerelease true`,
	RunE: runDraft,
}

func init() {
	rootCmd.AddCommand(draftCmd)

	draftCmd.Flags().Bool("dry-run", false, "Render the release without creating or updating it")
	draftCmd.Flags().Bool("enforce-references", false, "Skip refs that match none of the configured references")
	draftCmd.Flags().String("version", "", "Version to use instead of the resolved one")
	draftCmd.Flags().String("tag", "", "Tag for the release (overrides tag-template)")
	draftCmd.Flags().String("name", "", "Name for the release (overrides name-template)")
	draftCmd.Flags().String("commitish", "", "Target commitish for the release")
	draftCmd.Flags().String("prerelease", "", "Mark the release as a prerelease (true or false)")
	draftCmd.Flags().String("publish", "", "Publish the release instead of keeping a draft (true or false)")

	_ = viper.BindPFlag("dry_run", draftCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("enforce_references", draftCmd.Flags().Lookup("enforce-references"))
	_ = viper.BindPFlag("inputs.version", draftCmd.Flags().Lookup("version"))
	_ = viper.BindPFlag("inputs.tag", draftCmd.Flags().Lookup("tag"))
	_ = viper.BindPFlag("inputs.name", draftCmd.Flags().Lookup("name"))
	_ = viper.BindPFlag("inputs.commitish", draftCmd.Flags().Lookup("commitish"))
	_ = viper.BindPFlag("inputs.prerelease", draftCmd.Flags().Lookup("prerelease"))
	_ = viper.BindPFlag("inputs.publish", draftCmd.Flags().Lookup("publish"))
}

func runDraft(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	inputs, err := draftInputs(settings.Inputs)
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

	d := drafter.New(client, config.NewLoader(client), logger)
	result, err := d.Run(ctx, drafter.Request{
		Owner:             settings.Owner(),
		Repo:              settings.Repo(),
		Ref:               settings.Ref,
		ConfigName:        settings.ConfigName,
		Inputs:            inputs,
		DryRun:            settings.DryRun,
		EnforceReferences: settings.EnforceReferences,
	})
	if err != nil {
		logFailure(logger, err)
		return err
	}
	if result.Skipped {
		return nil
	}

	return emitOutputs(cmd.OutOrStdout(), releaseOutputs(result))
}

// loadSettings reads and validates the run settings.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

func draftInputs(in config.InputsConfig) (drafter.Inputs, error) {
	prerelease, err := in.PrereleaseOverride()
	if err != nil {
		return drafter.Inputs{}, err
	}
	publish, err := in.PublishOverride()
	if err != nil {
		return drafter.Inputs{}, err
	}
	return drafter.Inputs{
		Version:    in.Version,
		Tag:        in.Tag,
		Name:       in.Name,
		Commitish:  in.Commitish,
		Prerelease: prerelease,
		Publish:    publish,
	}, nil
}

// logFailure logs every schema violation on its own line.
func logFailure(logger logging.Logger, err error) {
	var schemaErr *config.SchemaError
	if errors.As(err, &schemaErr) {
		for _, v := range schemaErr.Violations {
			logger.Errorf("Invalid config: %s", v)
		}
		return
	}
	logger.Errorf("%v", err)
}
