// Package view serves the thumbnail proxy and builds its URLs.
package view

import (
	"fmt"
	"net/url"
	"strings"
)

// ThumbnailRoute is the chi pattern the proxy is mounted on.
const ThumbnailRoute = "/api/seafile/thumbnail/{entry_id}/{repo_id}/{size:[0-9]+}/*"

var (
	encodeParens = strings.NewReplacer("(", "|28|", ")", "|29|")
	decodeParens = strings.NewReplacer("|28|", "(", "|29|", ")")
)

// EncodePath makes a library path safe to embed in a URL, including inside
// CSS url(): parentheses become |28| and |29|, every segment is
// query-escaped and the outer slashes are dropped.
func EncodePath(p string) string {
	p = encodeParens.Replace(p)
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.QueryEscape(s)
	}
	return strings.Trim(strings.Join(segments, "/"), "/")
}

// DecodePath reverses EncodePath. Invalid escapes are left as they are.
func DecodePath(p string) string {
	if unescaped, err := url.QueryUnescape(p); err == nil {
		p = unescaped
	}
	return decodeParens.Replace(p)
}

// ThumbnailURL returns the proxy URL for one file.
func ThumbnailURL(host, entryID, repoID, filePath string, size int) string {
	return fmt.Sprintf("%s/api/seafile/thumbnail/%s/%s/%d/%s",
		strings.Trim(host, "/"), entryID, repoID, size, EncodePath(filePath))
}
