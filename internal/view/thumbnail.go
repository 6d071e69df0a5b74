package view

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dm/sfm-go/internal/host"
	"github.com/dm/sfm-go/internal/logging"
	"github.com/dm/sfm-go/internal/mediatype"
	"github.com/dm/sfm-go/internal/metrics"
	"github.com/dm/sfm-go/internal/model"
)

const cacheControl = "public, max-age=31622400"

// ThumbnailHandler proxies thumbnails from the account's Seafile server.
// It requires no authentication.
type ThumbnailHandler struct {
	accounts  *host.Registry
	converter Converter
	log       zerolog.Logger
}

// NewThumbnailHandler returns a handler that looks accounts up in accounts
// and converts HEIC files with conv. A nil conv disables HEIC support.
func NewThumbnailHandler(accounts *host.Registry, conv Converter) *ThumbnailHandler {
	return &ThumbnailHandler{
		accounts:  accounts,
		converter: conv,
		log:       logging.Component("thumbnail"),
	}
}

// ServeHTTP expects the URL parameters of ThumbnailRoute.
func (h *ThumbnailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entry_id")
	repoID := chi.URLParam(r, "repo_id")

	acc, ok := h.accounts.Get(entryID)
	if !ok {
		h.notFound(w, "Unable to find entry with id: "+entryID)
		return
	}
	if !model.ValidRepositoryID(repoID) {
		h.notFound(w, "Unable to find library with id: "+repoID)
		return
	}
	size, err := strconv.Atoi(chi.URLParam(r, "size"))
	if err != nil {
		h.notFound(w, "Thumbnail not found")
		return
	}

	filePath := DecodePath(chi.URLParam(r, "*"))
	mime := mediatype.Guess(filePath)

	var body []byte
	if mime == mediatype.HEIC {
		if h.converter == nil {
			h.notFound(w, "Thumbnail not found")
			return
		}
		data, err := acc.Client.FileBytes(r.Context(), repoID, "/"+strings.TrimPrefix(filePath, "/"))
		if err != nil {
			h.log.Debug().Err(err).Str("path", filePath).Msg("heic download failed")
			h.notFound(w, "Thumbnail not found")
			return
		}
		body, err = h.converter.ToJPEG(r.Context(), data, size)
		if err != nil {
			h.log.Debug().Err(err).Str("path", filePath).Msg("heic conversion failed")
			h.notFound(w, "Thumbnail not found")
			return
		}
		mime = mediatype.JPEG
	} else {
		body, err = acc.Client.Thumbnail(r.Context(), repoID, filePath, size)
		if err != nil {
			h.log.Debug().Err(err).Str("path", filePath).Msg("thumbnail fetch failed")
			h.notFound(w, "Thumbnail not found")
			return
		}
	}

	if mime == "" {
		mime = "application/octet-stream"
	}
	sum := md5.Sum(body) //nolint:gosec

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("ETag", hex.EncodeToString(sum[:]))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	metrics.ThumbnailRequests.WithLabelValues("served").Inc()
}

func (h *ThumbnailHandler) notFound(w http.ResponseWriter, message string) {
	metrics.ThumbnailRequests.WithLabelValues("not_found").Inc()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(message))
}
