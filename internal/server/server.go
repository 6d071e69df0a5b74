// Package server exposes the thumbnail proxy, media browser, diagnostics,
// health and entity states over HTTP.
package server

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dm/sfm-go/internal/diagnostics"
	"github.com/dm/sfm-go/internal/entity"
	"github.com/dm/sfm-go/internal/health"
	"github.com/dm/sfm-go/internal/host"
	"github.com/dm/sfm-go/internal/logging"
	"github.com/dm/sfm-go/internal/media"
	"github.com/dm/sfm-go/internal/view"
)

// Server holds everything the handlers read from.
type Server struct {
	accounts  *host.Registry
	states    *entity.States
	media     *media.Source
	thumbnail http.Handler
	version   string
	log       zerolog.Logger
}

// Options configures New.
type Options struct {
	Accounts    *host.Registry
	States      *entity.States
	ExternalURL string
	Converter   view.Converter
	// Version is reported as component_version by the health endpoint.
	Version string
}

// New builds a Server.
func New(opts Options) *Server {
	return &Server{
		accounts:  opts.Accounts,
		states:    opts.States,
		media:     media.NewSource(opts.Accounts, opts.ExternalURL),
		thumbnail: view.NewThumbnailHandler(opts.Accounts, opts.Converter),
		version:   opts.Version,
		log:       logging.Component("http"),
	}
}

// Router returns the chi router with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Method(http.MethodGet, view.ThumbnailRoute, s.thumbnail)

	r.Route("/api/seafile", func(r chi.Router) {
		r.Get("/media", s.handleBrowse)
		r.Get("/media/*", s.handleBrowse)
		r.Get("/resolve/*", s.handleResolve)
		r.Get("/diagnostics/{entry_id}", s.handleDiagnostics)
		r.Get("/health", s.handleHealth)
		r.Get("/states", s.handleStates)
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}

// NewHTTPServer returns an *http.Server for addr serving s.Router().
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	node, err := s.media.Browse(r.Context(), identifier(r))
	if err != nil {
		s.mediaError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	play, err := s.media.Resolve(r.Context(), identifier(r))
	if err != nil {
		s.mediaError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, play)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entry_id")
	acc, ok := s.accounts.Get(entryID)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorBody("Unable to find entry with id: "+entryID))
		return
	}
	out, err := diagnostics.Export(acc)
	if err != nil {
		s.log.Error().Err(err).Str("entry_id", entryID).Msg("diagnostics export failed")
		s.writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, health.Info(s.accounts, s.version))
}

func (s *Server) handleStates(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.states.All())
}

func (s *Server) mediaError(w http.ResponseWriter, err error) {
	var be *media.BrowseError
	var ue *media.UnresolvableError
	if errors.As(err, &be) || errors.As(err, &ue) {
		s.writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		return
	}
	s.log.Error().Err(err).Msg("media request failed")
	s.writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

// identifier returns the media identifier after the route prefix. Clients
// may percent-encode it.
func identifier(r *http.Request) string {
	id := chi.URLParam(r, "*")
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("size", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
