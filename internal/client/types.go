package client

import (
	"bytes"
	"fmt"
	"strconv"
)

// Bytes is a byte count. Seafile sends it either as a number or as a
// numeric string.
type Bytes int64

// UnmarshalJSON accepts 123, 123.0 and "123".
func (b *Bytes) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*b = Bytes(n)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid byte count %q", data)
	}
	*b = Bytes(int64(f))
	return nil
}

// AccountInfo represents the response from account/info. Pointer fields are
// nil when the server omits them.
type AccountInfo struct {
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	ContactEmail string  `json:"contact_email"`
	LoginID      string  `json:"login_id"`
	AvatarURL    *string `json:"avatar_url"`
	Total        *Bytes  `json:"total"`
	Usage        *Bytes  `json:"usage"`
	SpaceUsage   string  `json:"space_usage"`
	IsStaff      bool    `json:"is_staff"`
}

// ServerInfo represents the response from server-info.
type ServerInfo struct {
	Version  *string  `json:"version"`
	Edition  string   `json:"edition"`
	Features []string `json:"features"`
}

// Library is one entry of repos?type=mine.
type Library struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Size       Bytes  `json:"size"`
	Type       string `json:"type"`
	Owner      string `json:"owner"`
	Permission string `json:"permission"`
	Encrypted  bool   `json:"encrypted"`
	MTime      int64  `json:"mtime"`
}

// DirEntry is one item of a directory listing. Type is "dir" or "file".
type DirEntry struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Name       string `json:"name"`
	MTime      int64  `json:"mtime"`
	Size       Bytes  `json:"size"`
	Permission string `json:"permission"`
}

// IsDir reports whether the entry is a directory.
func (e DirEntry) IsDir() bool { return e.Type == "dir" }
