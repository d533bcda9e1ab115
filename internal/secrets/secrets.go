// Package secrets loads the GitHub App private key from disk or from GCP
// Secret Manager.
package secrets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// Fetcher defines the interface for fetching secrets
type Fetcher interface {
	FetchSecret(ctx context.Context, secretPath string) (string, error)
	Close() error
}

// SecretManagerClient wraps the GCP Secret Manager client
type SecretManagerClient struct {
	client    *secretmanager.Client
	projectID string
}

// NewSecretManagerClient creates a new Secret Manager client. An empty
// projectID is looked up from the environment or the metadata server.
func NewSecretManagerClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*SecretManagerClient, error) {
	if projectID == "" {
		var err error
		projectID, err = getProjectID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get project ID: %w", err)
		}
	}

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}

	return &SecretManagerClient{
		client:    client,
		projectID: projectID,
	}, nil
}

// getProjectID retrieves the GCP project ID from environment variables or
// the metadata server
func getProjectID(ctx context.Context) (string, error) {
	for _, name := range []string{"GOOGLE_CLOUD_PROJECT", "GCP_PROJECT", "GCLOUD_PROJECT"} {
		if projectID := os.Getenv(name); projectID != "" {
			return projectID, nil
		}
	}
	return getProjectIDFromMetadata(ctx, "http://metadata.google.internal")
}

// getProjectIDFromMetadata fetches the project ID from the GCP metadata server
func getProjectIDFromMetadata(ctx context.Context, host string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+"/computeMetadata/v1/project/project-id", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata request: %w", err)
	}
	req.Header.Set("Metadata-Flavor", "Google")

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch project ID from metadata server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("metadata server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read metadata response: %w", err)
	}

	projectID := strings.TrimSpace(string(body))
	if projectID == "" {
		return "", fmt.Errorf("empty project ID from metadata server")
	}
	return projectID, nil
}

// FetchSecret retrieves a secret. secretPath is one of
// projects/P/secrets/S/versions/V, projects/P/secrets/S (latest) or S.
func (c *SecretManagerClient) FetchSecret(ctx context.Context, secretPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := c.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: normalizeSecretPath(c.projectID, secretPath),
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}
	return string(result.Payload.Data), nil
}

// normalizeSecretPath expands a secret reference to a full version name
func normalizeSecretPath(projectID, secretPath string) string {
	if strings.HasPrefix(secretPath, "projects/") && strings.Contains(secretPath, "/versions/") {
		return secretPath
	}
	if strings.HasPrefix(secretPath, "projects/") && strings.Contains(secretPath, "/secrets/") {
		return secretPath + "/versions/latest"
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, path.Base(secretPath))
}

// Close closes the Secret Manager client
func (c *SecretManagerClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// LoadPrivateKey reads the App private key from file when set, otherwise
// from secretPath through fetcher.
func LoadPrivateKey(ctx context.Context, file, secretPath string, fetcher Fetcher) ([]byte, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key file: %w", err)
		}
		return data, nil
	}

	if secretPath == "" {
		return nil, fmt.Errorf("no private key file or secret configured")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("no secret fetcher for %s", secretPath)
	}

	key, err := fetcher.FetchSecret(ctx, secretPath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch private key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("private key secret %s is empty", secretPath)
	}
	return []byte(key + "\n"), nil
}
