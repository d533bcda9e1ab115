package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/andywolf/release-drafter/internal/config"
)

// GetFile reads path from the default branch of owner/repo. A missing file
// or repository yields config.ErrNotFound.
func (c *Client) GetFile(ctx context.Context, owner, repo, path string) ([]byte, error) {
	file, dir, resp, err := c.rest.Repositories.GetContents(ctx, owner, repo, path, nil)
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s/%s:%s: %w", owner, repo, path, config.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from %s/%s: %w", path, owner, repo, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s in %s/%s is a directory with %d entries", path, owner, repo, len(dir))
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return []byte(content), nil
}

var _ config.FileFetcher = (*Client)(nil)

