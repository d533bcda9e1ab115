package cli

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/andywolf/release-drafter/internal/config"
	"github.com/andywolf/release-drafter/internal/github"
	"github.com/andywolf/release-drafter/internal/logging"
	"github.com/andywolf/release-drafter/internal/secrets"
	"github.com/andywolf/release-drafter/internal/version"
)

// newLogger builds the run logger from the settings.
func newLogger(ctx context.Context, w io.Writer, settings *config.Settings, runID string) (logging.Logger, error) {
	return logging.New(ctx, w, logging.Options{
		Format:  settings.Logging.Format,
		Verbose: settings.Logging.Verbose,
		Labels: map[string]string{
			"run_id":     runID,
			"repository": settings.Repository,
		},
		Secrets:    []string{settings.GitHub.Token},
		GCPProject: settings.Logging.GCPProject,
		LogName:    settings.Logging.LogName,
	}, option.WithUserAgent(version.UserAgent()))
}

// newGitHubClient authenticates with the configured token, or as a GitHub
// App installation when no token is set.
func newGitHubClient(ctx context.Context, settings *config.Settings, logger logging.Logger) (*github.Client, error) {
	ts, err := tokenSource(ctx, settings, logger)
	if err != nil {
		return nil, err
	}
	return github.NewClient(ctx, ts,
		github.WithAPIURL(settings.GitHub.APIURL),
		github.WithGraphQLURL(settings.GitHub.GraphQLURL),
		github.WithUserAgent(version.UserAgent()),
	)
}

func tokenSource(ctx context.Context, settings *config.Settings, logger logging.Logger) (oauth2.TokenSource, error) {
	gh := settings.GitHub
	if gh.Token != "" {
		return github.StaticTokenSource(gh.Token), nil
	}

	logger.Debugf("Authenticating as GitHub App %d (installation %d)", gh.AppID, gh.InstallationID)

	var fetcher secrets.Fetcher
	if gh.PrivateKeyFile == "" && gh.PrivateKeySecret != "" {
		sm, err := secrets.NewSecretManagerClient(ctx, gh.SecretProject, option.WithUserAgent(version.UserAgent()))
		if err != nil {
			return nil, err
		}
		defer func() { _ = sm.Close() }()
		fetcher = sm
	}

	pem, err := secrets.LoadPrivateKey(ctx, gh.PrivateKeyFile, gh.PrivateKeySecret, fetcher)
	if err != nil {
		return nil, err
	}
	creds, err := github.NewAppCredentials(gh.AppID, gh.InstallationID, pem)
	if err != nil {
		return nil, fmt.Errorf("failed to load GitHub App credentials: %w", err)
	}
	return github.NewInstallationTokenSource(ctx, creds, github.WithBaseURL(gh.APIURL)), nil
}
