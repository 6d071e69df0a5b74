package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

const (
	endpointAccount   = "account/info"
	endpointServer    = "server-info"
	endpointLibraries = "repos"
)

// Account fetches account/info.
func (c *DefaultClient) Account(ctx context.Context) (*AccountInfo, error) {
	body, err := c.request(ctx, endpointAccount, nil, false)
	if err != nil {
		return nil, fmt.Errorf("Account: %w", err)
	}

	var result AccountInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("Account decode: %w", err)}
	}
	return &result, nil
}

// Server fetches server-info.
func (c *DefaultClient) Server(ctx context.Context) (*ServerInfo, error) {
	body, err := c.request(ctx, endpointServer, nil, false)
	if err != nil {
		return nil, fmt.Errorf("Server: %w", err)
	}

	var result ServerInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("Server decode: %w", err)}
	}
	return &result, nil
}

// Libraries fetches the libraries owned by the account.
func (c *DefaultClient) Libraries(ctx context.Context) ([]Library, error) {
	body, err := c.request(ctx, endpointLibraries, url.Values{"type": {"mine"}}, false)
	if err != nil {
		return nil, fmt.Errorf("Libraries: %w", err)
	}

	var result []Library
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("Libraries decode: %w", err)}
	}
	return result, nil
}

// Directories lists path inside a library. An empty path lists the root.
func (c *DefaultClient) Directories(ctx context.Context, repoID, path string) ([]DirEntry, error) {
	var query url.Values
	if path != "" {
		query = url.Values{"p": {path}}
	}

	body, err := c.request(ctx, repoPath(repoID, "dir"), query, false)
	if err != nil {
		return nil, fmt.Errorf("Directories: %w", err)
	}

	var result []DirEntry
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("Directories decode: %w", err)}
	}
	return result, nil
}

// File returns the response of the file endpoint as text. For Seafile this
// is a quoted, reusable download link.
func (c *DefaultClient) File(ctx context.Context, repoID, path string) (string, error) {
	body, err := c.request(ctx, repoPath(repoID, "file"), url.Values{"p": {path}, "reuse": {"1"}}, true)
	if err != nil {
		return "", fmt.Errorf("File: %w", err)
	}
	return string(body), nil
}

// FileBytes downloads the content of a file through its download link.
func (c *DefaultClient) FileBytes(ctx context.Context, repoID, path string) ([]byte, error) {
	link, err := c.File(ctx, repoID, path)
	if err != nil {
		return nil, err
	}
	link = strings.Trim(link, `"`)
	if _, err := url.ParseRequestURI(link); err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("FileBytes: invalid download link %q", truncate([]byte(link), 200))}
	}

	body, err := c.download(ctx, link, repoPath(repoID, "file/download"))
	if err != nil {
		return nil, fmt.Errorf("FileBytes: %w", err)
	}
	return body, nil
}

// Thumbnail fetches a server-rendered thumbnail. A size <= 0 requests
// ThumbnailSize.
func (c *DefaultClient) Thumbnail(ctx context.Context, repoID, path string, size int) ([]byte, error) {
	if size <= 0 {
		size = ThumbnailSize
	}
	query := url.Values{
		"p":    {"/" + strings.Trim(path, "/")},
		"size": {strconv.Itoa(size)},
	}

	body, err := c.request(ctx, repoPath(repoID, "thumbnail"), query, true)
	if err != nil {
		return nil, fmt.Errorf("Thumbnail: %w", err)
	}
	return body, nil
}

func repoPath(repoID, action string) string {
	return "repos/" + url.PathEscape(repoID) + "/" + action
}
