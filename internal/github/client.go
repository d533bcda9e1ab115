package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// Client wraps the REST and GraphQL clients for one repository owner.
type Client struct {
	rest    *gh.Client
	graphql *githubv4.Client
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	apiURL     string
	graphqlURL string
	userAgent  string
}

// WithAPIURL points the REST client at apiURL.
func WithAPIURL(apiURL string) ClientOption {
	return func(o *clientOptions) {
		o.apiURL = apiURL
	}
}

// WithGraphQLURL points the GraphQL client at graphqlURL.
func WithGraphQLURL(graphqlURL string) ClientOption {
	return func(o *clientOptions) {
		o.graphqlURL = graphqlURL
	}
}

// WithUserAgent sets the User-Agent of REST requests.
func WithUserAgent(userAgent string) ClientOption {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// NewClient creates a client that authenticates every request through ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...ClientOption) (*Client, error) {
	return NewClientWithHTTP(oauth2.NewClient(ctx, ts), opts...)
}

// NewClientWithHTTP creates a client on top of an already authenticated
// HTTP client.
func NewClientWithHTTP(httpClient *http.Client, opts ...ClientOption) (*Client, error) {
	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	rest := gh.NewClient(httpClient)
	if o.userAgent != "" {
		rest.UserAgent = o.userAgent
	}
	if o.apiURL != "" {
		base, err := url.Parse(strings.TrimSuffix(o.apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid API URL %q: %w", o.apiURL, err)
		}
		rest.BaseURL = base
	}

	graphql := githubv4.NewClient(httpClient)
	if o.graphqlURL != "" {
		graphql = githubv4.NewEnterpriseClient(o.graphqlURL, httpClient)
	}

	return &Client{rest: rest, graphql: graphql}, nil
}
