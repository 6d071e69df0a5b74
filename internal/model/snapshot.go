package model

import (
	"maps"
	"time"
)

// Data keys shared by the updater, entities and diagnostics.
const (
	KeyState        = "state"
	KeyVersion      = "device_sw_version"
	KeyAvatarURL    = "avatar_url"
	KeyRepositories = "repositories"
	KeySize         = "size"
	KeyName         = "name"
	KeySpaceTotal   = "space_total"
	KeySpaceUsage   = "space_usage"
)

// Repository is the last known state of one library.
type Repository struct {
	Size int64  `json:"size"`
	Name string `json:"name"`
}

// Field returns the repository attribute named key.
func (r Repository) Field(key string) (any, bool) {
	switch key {
	case KeySize:
		return r.Size, true
	case KeyName:
		return r.Name, true
	}
	return nil, false
}

// Snapshot is the data published by an updater after each cycle. Values
// from earlier cycles survive until overwritten; repositories are only ever
// added or updated.
type Snapshot struct {
	State        bool
	Version      string
	AvatarURL    string
	Space        map[string]int64
	Repositories map[string]Repository
	UpdatedAt    time.Time
}

// NewSnapshot returns an empty snapshot with its maps allocated.
func NewSnapshot() Snapshot {
	return Snapshot{
		Space:        make(map[string]int64),
		Repositories: make(map[string]Repository),
	}
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Space = maps.Clone(s.Space)
	out.Repositories = maps.Clone(s.Repositories)
	if out.Space == nil {
		out.Space = make(map[string]int64)
	}
	if out.Repositories == nil {
		out.Repositories = make(map[string]Repository)
	}
	return out
}

// Value resolves a top-level key. ok is false when the key was never set.
func (s Snapshot) Value(key string) (any, bool) {
	switch key {
	case KeyState:
		return s.State, true
	case KeyVersion:
		return s.Version, s.Version != ""
	case KeyAvatarURL:
		return s.AvatarURL, s.AvatarURL != ""
	}
	v, ok := s.Space[key]
	return v, ok
}

// Map renders the snapshot with the flat key layout used by diagnostics.
func (s Snapshot) Map() map[string]any {
	repos := make(map[string]any, len(s.Repositories))
	for id, r := range s.Repositories {
		repos[id] = map[string]any{KeySize: r.Size, KeyName: r.Name}
	}

	out := map[string]any{
		KeyState:        s.State,
		KeyRepositories: repos,
	}
	if s.Version != "" {
		out[KeyVersion] = s.Version
	}
	if s.AvatarURL != "" {
		out[KeyAvatarURL] = s.AvatarURL
	}
	for k, v := range s.Space {
		out[k] = v
	}
	return out
}
