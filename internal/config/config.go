package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigName is the release-drafter document looked up under .github/.
const DefaultConfigName = "release-drafter.yml"

// Settings represents the runtime settings of a release-drafter run
type Settings struct {
	Repository        string        `mapstructure:"repository"`
	Ref               string        `mapstructure:"ref"`
	ConfigName        string        `mapstructure:"config_name"`
	DryRun            bool          `mapstructure:"dry_run"`
	EnforceReferences bool          `mapstructure:"enforce_references"`
	GitHub            GitHubConfig  `mapstructure:"github"`
	Logging           LoggingConfig `mapstructure:"logging"`
	Inputs            InputsConfig  `mapstructure:"inputs"`
}

// GitHubConfig contains API endpoints and credentials. Either Token or the
// GitHub App fields must be set.
type GitHubConfig struct {
	Token            string `mapstructure:"token"`
	APIURL           string `mapstructure:"api_url"`
	GraphQLURL       string `mapstructure:"graphql_url"`
	AppID            int64  `mapstructure:"app_id"`
	InstallationID   int64  `mapstructure:"installation_id"`
	PrivateKeyFile   string `mapstructure:"private_key_file"`
	PrivateKeySecret string `mapstructure:"private_key_secret"`
	SecretProject    string `mapstructure:"secret_project"` // GCP project holding the key secret
}

// LoggingConfig selects the log sink
type LoggingConfig struct {
	Format     string `mapstructure:"format"` // text, json or cloud
	GCPProject string `mapstructure:"gcp_project"`
	LogName    string `mapstructure:"log_name"`
	Verbose    bool   `mapstructure:"verbose"`
}

// InputsConfig holds the explicit overrides supplied by the caller.
// Prerelease and Publish are kept as strings so "unset" can be told apart
// from "false".
type InputsConfig struct {
	Version    string `mapstructure:"version"`
	Tag        string `mapstructure:"tag"`
	Name       string `mapstructure:"name"`
	Commitish  string `mapstructure:"commitish"`
	Prerelease string `mapstructure:"prerelease"`
	Publish    string `mapstructure:"publish"`
}

// envBindings maps settings keys to the environment variables GitHub Actions
// provides, in addition to the RELEASE_DRAFTER_ prefixed names.
var envBindings = map[string][]string{
	"repository":         {"GITHUB_REPOSITORY"},
	"ref":                {"GITHUB_REF"},
	"github.token":       {"GITHUB_TOKEN", "INPUT_TOKEN"},
	"github.api_url":     {"GITHUB_API_URL"},
	"github.graphql_url": {"GITHUB_GRAPHQL_URL"},
	"config_name":        {"INPUT_CONFIG-NAME", "INPUT_CONFIG_NAME"},
	"inputs.version":     {"INPUT_VERSION"},
	"inputs.tag":         {"INPUT_TAG"},
	"inputs.name":        {"INPUT_NAME"},
	"inputs.commitish":   {"INPUT_COMMITISH"},
	"inputs.prerelease":  {"INPUT_PRERELEASE"},
	"inputs.publish":     {"INPUT_PUBLISH"},
	"dry_run":            {"INPUT_DRY-RUN", "INPUT_DRY_RUN"},

	"enforce_references":        nil,
	"github.app_id":             nil,
	"github.installation_id":    nil,
	"github.private_key_file":   nil,
	"github.private_key_secret": nil,
	"github.secret_project":     nil,
	"logging.format":            nil,
	"logging.gcp_project":       nil,
	"logging.log_name":          nil,
	"logging.verbose":           nil,
}

// BindEnv wires the environment into v. Prefixed variables such as
// RELEASE_DRAFTER_GITHUB_TOKEN take precedence over the Actions names.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("RELEASE_DRAFTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range envBindings {
		prefixed := "RELEASE_DRAFTER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(append([]string{key, prefixed}, names...)...)
	}
}

// Load loads settings from the global viper instance
func Load() (*Settings, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads settings from v
func LoadFrom(v *viper.Viper) (*Settings, error) {
	cfg := &Settings{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Settings) {
	if cfg.ConfigName == "" {
		cfg.ConfigName = DefaultConfigName
	}

	if cfg.GitHub.APIURL == "" {
		cfg.GitHub.APIURL = "https://api.github.com/"
	}

	if cfg.GitHub.GraphQLURL == "" {
		cfg.GitHub.GraphQLURL = strings.TrimSuffix(cfg.GitHub.APIURL, "/") + "/graphql"
	}

	if cfg.Logging.Format == "" {
		if cfg.Logging.GCPProject != "" {
			cfg.Logging.Format = "cloud"
		} else {
			cfg.Logging.Format = "text"
		}
	}

	if cfg.Logging.LogName == "" {
		cfg.Logging.LogName = "release-drafter"
	}
}

// Owner returns the owner half of Repository
func (c *Settings) Owner() string {
	owner, _, _ := strings.Cut(c.Repository, "/")
	return owner
}

// Repo returns the name half of Repository
func (c *Settings) Repo() string {
	_, name, _ := strings.Cut(c.Repository, "/")
	return name
}

// Validate validates the settings
func (c *Settings) Validate() error {
	owner, name, ok := strings.Cut(c.Repository, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("invalid repository %q (must be owner/name)", c.Repository)
	}

	if c.GitHub.Token == "" && c.GitHub.AppID == 0 {
		return fmt.Errorf("a GitHub token or GitHub App ID is required")
	}

	if c.GitHub.Token == "" {
		if c.GitHub.InstallationID == 0 {
			return fmt.Errorf("GitHub App Installation ID is required")
		}
		if c.GitHub.PrivateKeyFile == "" && c.GitHub.PrivateKeySecret == "" {
			return fmt.Errorf("GitHub App private key file or secret path is required")
		}
	}

	validFormats := map[string]bool{"text": true, "json": true, "cloud": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text, json, or cloud)", c.Logging.Format)
	}

	if c.Logging.Format == "cloud" && c.Logging.GCPProject == "" {
		return fmt.Errorf("logging.gcp_project is required for cloud logging")
	}

	if _, err := c.Inputs.PrereleaseOverride(); err != nil {
		return err
	}
	if _, err := c.Inputs.PublishOverride(); err != nil {
		return err
	}

	return nil
}

// PrereleaseOverride returns the prerelease input, or nil when unset
func (i InputsConfig) PrereleaseOverride() (*bool, error) {
	return parseOptionalBool("prerelease", i.Prerelease)
}

// PublishOverride returns the publish input, or nil when unset
func (i InputsConfig) PublishOverride() (*bool, error) {
	return parseOptionalBool("publish", i.Publish)
}

func parseOptionalBool(name, s string) (*bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s input %q: %w", name, s, err)
	}
	return &b, nil
}
