package github

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// TokenRefreshBuffer is how long before expiry an installation token is
// replaced.
const TokenRefreshBuffer = 5 * time.Minute

// InstallationTokenSource is an oauth2.TokenSource that mints GitHub App
// installation tokens and caches them until they are close to expiring.
type InstallationTokenSource struct {
	mu sync.Mutex

	ctx        context.Context
	creds      *AppCredentials
	apiURL     string
	httpClient *http.Client
	nowFunc    func() time.Time

	token *oauth2.Token
}

// TokenSourceOption configures an InstallationTokenSource.
type TokenSourceOption func(*InstallationTokenSource)

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(client *http.Client) TokenSourceOption {
	return func(s *InstallationTokenSource) {
		s.httpClient = client
	}
}

// WithBaseURL sets the REST API root (GitHub Enterprise or tests).
func WithBaseURL(url string) TokenSourceOption {
	return func(s *InstallationTokenSource) {
		s.apiURL = url
	}
}

// WithNowFunc sets a custom time function for testing.
func WithNowFunc(fn func() time.Time) TokenSourceOption {
	return func(s *InstallationTokenSource) {
		s.nowFunc = fn
	}
}

// NewInstallationTokenSource creates a token source for creds.
func NewInstallationTokenSource(ctx context.Context, creds *AppCredentials, opts ...TokenSourceOption) *InstallationTokenSource {
	s := &InstallationTokenSource{
		ctx:        ctx,
		creds:      creds,
		apiURL:     "https://api.github.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns a cached installation token or mints a new one.
func (s *InstallationTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	if s.token != nil && s.token.Expiry.After(now.Add(TokenRefreshBuffer)) {
		return s.token, nil
	}

	appJWT, err := s.creds.SignJWT(now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	installToken, err := exchangeToken(s.ctx, s.httpClient, s.apiURL, appJWT, s.creds.InstallationID)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	s.token = &oauth2.Token{
		AccessToken: installToken.Token,
		TokenType:   "token",
		Expiry:      installToken.ExpiresAt,
	}
	return s.token, nil
}

// StaticTokenSource wraps a personal access or Actions token.
func StaticTokenSource(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
}
