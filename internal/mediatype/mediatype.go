// Package mediatype guesses MIME types from file names and maps them to
// media browser classes.
package mediatype

import (
	"mime"
	"path"
	"strings"
)

const (
	HEIC = "image/heic"
	JPEG = "image/jpeg"
)

// Media classes shown by the browser.
const (
	ClassApp       = "app"
	ClassDirectory = "directory"
	ClassMusic     = "music"
	ClassVideo     = "video"
	ClassImage     = "image"
)

var classes = map[string]string{
	"audio": ClassMusic,
	"video": ClassVideo,
	"image": ClassImage,
}

// Extensions commonly stored in Seafile libraries that the platform's MIME
// table may not know about.
var extraTypes = map[string]string{
	".heic": HEIC,
	".heif": "image/heif",
	".jpg":  JPEG,
	".jpeg": JPEG,
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".wav":  "audio/x-wav",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".opus": "audio/opus",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".txt":  "text/plain",
	".pdf":  "application/pdf",
}

//nolint:gochecknoinits
func init() {
	for ext, typ := range extraTypes {
		_ = mime.AddExtensionType(ext, typ)
	}
}

// Guess returns the MIME type for name without parameters, or "" when
// unknown.
func Guess(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return ""
	}
	typ := mime.TypeByExtension(ext)
	if i := strings.IndexByte(typ, ';'); i >= 0 {
		typ = typ[:i]
	}
	return strings.TrimSpace(typ)
}

// Short returns the top-level part of a MIME type, e.g. "image".
func Short(typ string) string {
	if typ == "" {
		return ""
	}
	short, _, _ := strings.Cut(typ, "/")
	return short
}

// Class maps a top-level MIME type to a playable media class. ok is false
// for anything other than audio, video and image.
func Class(short string) (string, bool) {
	c, ok := classes[short]
	return c, ok
}

// IsHEIC reports whether name looks like a HEIC image.
func IsHEIC(name string) bool {
	return Guess(name) == HEIC
}
