// Package media exposes Seafile libraries as a browsable media tree.
//
// Identifiers have the form "{entry_id}/{repo_id}/{path...}". The empty
// identifier is the root listing every account.
package media

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dm/sfm-go/internal/client"
	"github.com/dm/sfm-go/internal/host"
	"github.com/dm/sfm-go/internal/logging"
	"github.com/dm/sfm-go/internal/mediatype"
	"github.com/dm/sfm-go/internal/model"
	"github.com/dm/sfm-go/internal/view"
)

const (
	// Title is the name of the root node.
	Title = "Seafile"
	// DefaultLibraryName is shown for libraries without a name.
	DefaultLibraryName = "Library"
)

// BrowseMedia is one node of the media tree.
type BrowseMedia struct {
	Identifier         string         `json:"media_content_id"`
	Class              string         `json:"media_class"`
	ContentType        string         `json:"media_content_type"`
	Title              string         `json:"title"`
	Thumbnail          *string        `json:"thumbnail"`
	CanPlay            bool           `json:"can_play"`
	CanExpand          bool           `json:"can_expand"`
	ChildrenMediaClass string         `json:"children_media_class,omitempty"`
	Children           []*BrowseMedia `json:"children,omitempty"`
}

// PlayMedia is a resolved, directly playable URL.
type PlayMedia struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// Source browses and resolves media for the accounts in a registry.
type Source struct {
	accounts *host.Registry
	host     string
	log      zerolog.Logger
}

// NewSource returns a Source. externalURL is the base URL thumbnails and
// HEIC files are proxied through.
func NewSource(accounts *host.Registry, externalURL string) *Source {
	return &Source{
		accounts: accounts,
		host:     strings.TrimSuffix(externalURL, "/"),
		log:      logging.Component("media"),
	}
}

// Resolve turns a file identifier into a URL. HEIC images are served as
// JPEG through the thumbnail proxy; everything else gets a direct download
// link from the server.
func (s *Source) Resolve(ctx context.Context, identifier string) (*PlayMedia, error) {
	path := strings.Split(identifier, "/")
	if len(path) < 2 {
		return nil, &UnresolvableError{Message: "Could not resolve media item: " + identifier}
	}
	if !model.ValidRepositoryID(path[1]) {
		return nil, &UnresolvableError{Message: "Unable to find library with id: " + path[1]}
	}
	acc, ok := s.accounts.Get(path[0])
	if !ok {
		return nil, &UnresolvableError{Message: "Unable to find entry with id: " + path[0]}
	}
	if len(path) < 3 {
		return nil, &UnresolvableError{Message: "Could not resolve media item: " + identifier}
	}

	filePath := "/" + strings.Join(path[2:], "/")
	mime := mediatype.Guess(path[len(path)-1])

	if mime == mediatype.HEIC {
		return &PlayMedia{
			URL:      view.ThumbnailURL(s.host, path[0], path[1], filePath, 0),
			MimeType: mediatype.JPEG,
		}, nil
	}

	link, err := acc.Client.File(ctx, path[1], filePath)
	if err != nil {
		s.log.Debug().Err(err).Str("identifier", identifier).Msg("resolve failed")
		return nil, &UnresolvableError{Message: "Could not resolve media item: " + identifier, Err: err}
	}
	return &PlayMedia{URL: strings.Trim(link, `"`), MimeType: mime}, nil
}

// Browse returns the node for identifier with its children filled in.
func (s *Source) Browse(ctx context.Context, identifier string) (*BrowseMedia, error) {
	if identifier == "" {
		return s.root()
	}

	path := strings.Split(identifier, "/")
	if len(path) == 1 {
		return s.entry(identifier)
	}

	if !model.ValidRepositoryID(path[1]) {
		return nil, &BrowseError{Message: "Unable to find library with id: " + path[1]}
	}
	acc, ok := s.accounts.Get(path[0])
	if !ok {
		return nil, &BrowseError{Message: "Unable to find entry with id: " + path[0]}
	}

	var node *BrowseMedia
	if len(path) == 2 {
		name := DefaultLibraryName
		if repo, ok := acc.Updater.Data().Repositories[path[1]]; ok && repo.Name != "" {
			name = repo.Name
		}
		node = library(path[0], path[1], name, true)
	} else {
		node = directory(identifier, path[len(path)-1])
	}

	children, err := s.listing(ctx, acc.Client, identifier, path[1], "/"+strings.Join(path[2:], "/"))
	if err != nil {
		return nil, err
	}
	node.Children = children
	return node, nil
}

func (s *Source) root() (*BrowseMedia, error) {
	accounts := s.accounts.All()
	children := make([]*BrowseMedia, 0, len(accounts))
	for _, acc := range accounts {
		children = append(children, entryNode(acc))
	}
	return &BrowseMedia{
		Identifier:         "",
		Class:              mediatype.ClassApp,
		Title:              Title,
		CanExpand:          true,
		ChildrenMediaClass: mediatype.ClassApp,
		Children:           children,
	}, nil
}

func (s *Source) entry(entryID string) (*BrowseMedia, error) {
	acc, ok := s.accounts.Get(entryID)
	if !ok {
		return nil, &BrowseError{Message: "Unable to find entry with id: " + entryID}
	}
	return entryNode(acc), nil
}

func entryNode(acc *host.Account) *BrowseMedia {
	data := acc.Updater.Data()

	var thumbnail *string
	if data.AvatarURL != "" {
		avatar := data.AvatarURL
		thumbnail = &avatar
	}

	ids := make([]string, 0, len(data.Repositories))
	for id := range data.Repositories {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Or(cmp.Compare(data.Repositories[a].Name, data.Repositories[b].Name), cmp.Compare(a, b))
	})

	children := make([]*BrowseMedia, 0, len(ids))
	for _, id := range ids {
		name := data.Repositories[id].Name
		if name == "" {
			name = DefaultLibraryName
		}
		children = append(children, library(acc.EntryID, id, name, data.State))
	}

	return &BrowseMedia{
		Identifier:         acc.EntryID,
		Class:              mediatype.ClassApp,
		Title:              acc.Updater.Username(),
		Thumbnail:          thumbnail,
		CanExpand:          data.State,
		ChildrenMediaClass: mediatype.ClassDirectory,
		Children:           children,
	}
}

func library(entryID, repoID, name string, expandable bool) *BrowseMedia {
	return &BrowseMedia{
		Identifier:         entryID + "/" + repoID,
		Class:              mediatype.ClassDirectory,
		Title:              name,
		CanExpand:          expandable,
		ChildrenMediaClass: mediatype.ClassDirectory,
	}
}

func directory(identifier, name string) *BrowseMedia {
	return &BrowseMedia{
		Identifier:         identifier,
		Class:              mediatype.ClassDirectory,
		Title:              name,
		CanExpand:          true,
		ChildrenMediaClass: mediatype.ClassDirectory,
	}
}

func (s *Source) file(identifier, name, class string) *BrowseMedia {
	var thumbnail *string
	if class == mediatype.ClassImage {
		path := strings.Split(identifier, "/")
		u := view.ThumbnailURL(s.host, path[0], path[1], strings.Join(path[2:], "/")+"/"+name, client.ThumbnailSize)
		thumbnail = &u
	}
	return &BrowseMedia{
		Identifier:  identifier + "/" + name,
		Class:       class,
		ContentType: class,
		Title:       name,
		Thumbnail:   thumbnail,
		CanPlay:     true,
	}
}

// listing builds the children of a library or directory: subdirectories
// by name, then playable files newest first.
func (s *Source) listing(ctx context.Context, c client.SeafileClient, identifier, repoID, dirPath string) ([]*BrowseMedia, error) {
	entries, err := c.Directories(ctx, repoID, dirPath)
	if err != nil {
		s.log.Debug().Err(err).Str("path", dirPath).Msg("listing failed")
		return nil, &BrowseError{Message: "Unable to find path: " + dirPath, Err: err}
	}

	var dirs, files []client.DirEntry
	for _, e := range entries {
		switch e.Type {
		case "dir":
			dirs = append(dirs, e)
		case "file":
			files = append(files, e)
		}
	}

	slices.SortStableFunc(dirs, func(a, b client.DirEntry) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.MTime, b.MTime))
	})
	slices.SortStableFunc(files, func(a, b client.DirEntry) int {
		return cmp.Or(cmp.Compare(b.MTime, a.MTime), cmp.Compare(b.Name, a.Name))
	})

	out := make([]*BrowseMedia, 0, len(dirs)+len(files))
	for _, d := range dirs {
		name := cleanName(d.Name)
		out = append(out, directory(identifier+"/"+name, name))
	}
	for _, f := range files {
		class, ok := mediatype.Class(mediatype.Short(mediatype.Guess(f.Name)))
		if !ok {
			continue
		}
		out = append(out, s.file(identifier, cleanName(f.Name), class))
	}
	return out, nil
}

func cleanName(name string) string {
	return strings.ReplaceAll(name, "&nbsp", "")
}
