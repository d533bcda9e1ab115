// Package github talks to the GitHub REST and GraphQL APIs on behalf of a
// release-drafter run: commit history, releases and repository files.
package github

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// appJWTLifetime is how long an App JWT stays valid. GitHub rejects JWTs
// that live longer than 10 minutes.
const appJWTLifetime = 9 * time.Minute

// appJWTSkew backdates iat to tolerate clock drift with GitHub.
const appJWTSkew = 30 * time.Second

// AppCredentials identify a GitHub App installation.
type AppCredentials struct {
	AppID          int64
	InstallationID int64
	PrivateKey     *rsa.PrivateKey
}

// NewAppCredentials parses a PEM private key and validates the IDs.
func NewAppCredentials(appID, installationID int64, privateKeyPEM []byte) (*AppCredentials, error) {
	if appID <= 0 {
		return nil, fmt.Errorf("app ID must be positive")
	}
	if installationID <= 0 {
		return nil, fmt.Errorf("installation ID must be positive")
	}

	key, err := ParsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &AppCredentials{AppID: appID, InstallationID: installationID, PrivateKey: key}, nil
}

// SignJWT creates the short-lived JWT used to request installation tokens.
func (c *AppCredentials) SignJWT(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(c.AppID, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-appJWTSkew)),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParsePrivateKey parses a PKCS#1 or PKCS#8 PEM-encoded RSA private key.
func ParsePrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	if block.Type == "RSA PRIVATE KEY" {
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA")
	}
	return rsaKey, nil
}

// installationToken is the access token response.
type installationToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// exchangeToken trades an App JWT for an installation access token.
func exchangeToken(ctx context.Context, client *http.Client, apiURL, appJWT string, installationID int64) (*installationToken, error) {
	url := fmt.Sprintf("%s/app/installations/%d/access_tokens", strings.TrimSuffix(apiURL, "/"), installationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+appJWT)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var token installationToken
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.Token == "" {
		return nil, fmt.Errorf("token response did not contain a token")
	}
	return &token, nil
}

// parseAPIError turns a token endpoint error body into an error.
func parseAPIError(statusCode int, body []byte) error {
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return fmt.Errorf("API error (status %d): %s", statusCode, string(body))
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("unauthorized: %s (check JWT validity and expiration)", apiErr.Message)
	case http.StatusForbidden:
		return fmt.Errorf("forbidden: %s (check App permissions)", apiErr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("not found: %s (check installation ID)", apiErr.Message)
	default:
		return fmt.Errorf("API error (status %d): %s", statusCode, apiErr.Message)
	}
}
