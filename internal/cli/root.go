package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andywolf/release-drafter/internal/config"
	"github.com/andywolf/release-drafter/internal/version"
)

var settingsFile string

var rootCmd = &cobra.Command{
	Use:   "release-drafter",
	Short: "Drafts the next release notes as pull requests are merged",
	Long: `release-drafter collects the pull requests merged since the last release,
resolves the next version from their labels and keeps a draft GitHub release
up to date with categorized release notes.

Settings come from flags, RELEASE_DRAFTER_* environment variables or the
GitHub Actions environment (GITHUB_REPOSITORY, GITHUB_REF, INPUT_*).

Example:
  release-drafter draft --repository octo/app --ref refs/heads/main`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&settingsFile, "settings", "", "settings file (default is .release-drafter-settings.yaml)")
	flags.String("repository", "", "repository as owner/name")
	flags.String("ref", "", "git ref the run is for (e.g., refs/heads/main)")
	flags.String("config-name", "", "release-drafter document under .github/ (default release-drafter.yml)")
	flags.String("log-format", "", "log format: text, json or cloud")
	flags.Bool("verbose", false, "enable verbose output")

	_ = viper.BindPFlag("repository", flags.Lookup("repository"))
	_ = viper.BindPFlag("ref", flags.Lookup("ref"))
	_ = viper.BindPFlag("config_name", flags.Lookup("config-name"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("logging.verbose", flags.Lookup("verbose"))
}

func initConfig() {
	if settingsFile != "" {
		viper.SetConfigFile(settingsFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".release-drafter-settings")
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("logging.verbose") {
			fmt.Fprintln(os.Stderr, "Using settings file:", viper.ConfigFileUsed())
		}
	}
}
