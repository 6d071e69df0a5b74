// Package clienttest provides a function-field fake of client.SeafileClient
// for tests in other packages.
package clienttest

import (
	"context"
	"errors"
	"sync"

	"github.com/dm/sfm-go/internal/client"
)

// ErrMockFailure is a generic failure for tests that only need a non-nil
// error that is neither a connection nor a request error.
var ErrMockFailure = errors.New("mock failure")

// MockClient implements client.SeafileClient. A nil Fn returns a small
// canned response. Calls are counted per method.
type MockClient struct {
	LoginFn       func(ctx context.Context) error
	AccountFn     func(ctx context.Context) (*client.AccountInfo, error)
	ServerFn      func(ctx context.Context) (*client.ServerInfo, error)
	LibrariesFn   func(ctx context.Context) ([]client.Library, error)
	DirectoriesFn func(ctx context.Context, repoID, path string) ([]client.DirEntry, error)
	FileFn        func(ctx context.Context, repoID, path string) (string, error)
	FileBytesFn   func(ctx context.Context, repoID, path string) ([]byte, error)
	ThumbnailFn   func(ctx context.Context, repoID, path string, size int) ([]byte, error)
	URL           string

	mu    sync.Mutex
	calls map[string]int
}

var _ client.SeafileClient = (*MockClient)(nil)

func (m *MockClient) count(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

// Calls returns how many times the named method was invoked.
func (m *MockClient) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockClient) Login(ctx context.Context) error {
	m.count("Login")
	if m.LoginFn != nil {
		return m.LoginFn(ctx)
	}
	return nil
}

func (m *MockClient) Account(ctx context.Context) (*client.AccountInfo, error) {
	m.count("Account")
	if m.AccountFn != nil {
		return m.AccountFn(ctx)
	}
	return &client.AccountInfo{Email: "user@example.com"}, nil
}

func (m *MockClient) Server(ctx context.Context) (*client.ServerInfo, error) {
	m.count("Server")
	if m.ServerFn != nil {
		return m.ServerFn(ctx)
	}
	return &client.ServerInfo{}, nil
}

func (m *MockClient) Libraries(ctx context.Context) ([]client.Library, error) {
	m.count("Libraries")
	if m.LibrariesFn != nil {
		return m.LibrariesFn(ctx)
	}
	return nil, nil
}

func (m *MockClient) Directories(ctx context.Context, repoID, path string) ([]client.DirEntry, error) {
	m.count("Directories")
	if m.DirectoriesFn != nil {
		return m.DirectoriesFn(ctx, repoID, path)
	}
	return nil, nil
}

func (m *MockClient) File(ctx context.Context, repoID, path string) (string, error) {
	m.count("File")
	if m.FileFn != nil {
		return m.FileFn(ctx, repoID, path)
	}
	return `"http://mock/files/` + path + `"`, nil
}

func (m *MockClient) FileBytes(ctx context.Context, repoID, path string) ([]byte, error) {
	m.count("FileBytes")
	if m.FileBytesFn != nil {
		return m.FileBytesFn(ctx, repoID, path)
	}
	return []byte("file"), nil
}

func (m *MockClient) Thumbnail(ctx context.Context, repoID, path string, size int) ([]byte, error) {
	m.count("Thumbnail")
	if m.ThumbnailFn != nil {
		return m.ThumbnailFn(ctx, repoID, path, size)
	}
	return []byte("thumbnail"), nil
}

func (m *MockClient) Diagnostics() map[string]client.DiagnosticRecord {
	return map[string]client.DiagnosticRecord{
		"server-info": {DateTime: "2024-01-01T00:00:00", Message: "Successful request", Content: map[string]any{"version": "9.0.2"}},
	}
}

func (m *MockClient) BaseURL() string {
	if m.URL != "" {
		return m.URL
	}
	return "http://mock:8000"
}

// Str returns a pointer to s, for optional response fields.
func Str(s string) *string { return &s }

// Size returns a pointer to a byte count, for optional response fields.
func Size(n int64) *client.Bytes {
	b := client.Bytes(n)
	return &b
}
