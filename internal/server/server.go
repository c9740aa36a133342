// Package server exposes a read-only HTTP API over a repository.Manager.
//
// Routes:
//
//	GET /healthz
//	GET /repositories
//	GET /packages/{vendor}/{name}?constraint=^1.0
//	GET /packages/{vendor}/{name}/first?constraint=^1.0
//	GET /installed
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/repoman/pkg/buildinfo"
	"github.com/matzehuels/repoman/pkg/constraint"
	rperrors "github.com/matzehuels/repoman/pkg/errors"
	"github.com/matzehuels/repoman/pkg/integrations"
	"github.com/matzehuels/repoman/pkg/observability"
	"github.com/matzehuels/repoman/pkg/repository"
)

// Server serves queries against a shared Manager.
type Server struct {
	manager *repository.Manager
	logger  *log.Logger
	stats   *observability.Stats
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithStats reports stats in the /healthz response.
func WithStats(stats *observability.Stats) Option {
	return func(s *Server) { s.stats = stats }
}

// New returns a Server for m. A nil logger discards request logs.
func New(m *repository.Manager, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		manager: m,
		logger:  repository.Env{IO: logger}.Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/repositories", s.repositories)
	r.Get("/installed", s.installed)
	r.Route("/packages/{vendor}/{name}", func(r chi.Router) {
		r.Get("/", s.findPackages)
		r.Get("/first", s.findPackage)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("Serving repository API", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":       "ok",
		"version":      buildinfo.Version,
		"repositories": len(s.manager.Repositories()),
	}
	if s.stats != nil {
		body["stats"] = s.stats.Snapshot()
	}
	writeJSON(w, http.StatusOK, body)
}

type repoInfo struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
}

func (s *Server) repositories(w http.ResponseWriter, r *http.Request) {
	repos := s.manager.Repositories()
	out := make([]repoInfo, len(repos))
	for i, repo := range repos {
		out[i] = repoInfo{Index: i, Description: repository.Describe(repo)}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"repositories": out,
		"types":        s.manager.Types(),
	})
}

func (s *Server) installed(w http.ResponseWriter, r *http.Request) {
	local := s.manager.LocalRepository()
	if local == nil {
		writeError(w, rperrors.New(rperrors.ErrCodeNotFound, "no local repository configured"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"repository": repository.Describe(local),
		"packages":   local.Packages(),
	})
}

func (s *Server) findPackages(w http.ResponseWriter, r *http.Request) {
	name, c, err := query(r)
	if err != nil {
		writeError(w, err)
		return
	}
	pkgs, err := s.manager.FindPackages(r.Context(), name, c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":       name,
		"constraint": c.String(),
		"packages":   pkgs,
	})
}

func (s *Server) findPackage(w http.ResponseWriter, r *http.Request) {
	name, c, err := query(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.manager.FindPackage(r.Context(), name, c)
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		writeError(w, rperrors.New(rperrors.ErrCodePackageNotFound, "no package matches %s %s", name, c))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func query(r *http.Request) (string, constraint.Constraint, error) {
	name := strings.ToLower(chi.URLParam(r, "vendor") + "/" + chi.URLParam(r, "name"))
	if err := rperrors.ValidateComposerName(name); err != nil {
		return "", nil, err
	}
	c, err := constraint.Parse(r.URL.Query().Get("constraint"))
	if err != nil {
		return "", nil, err
	}
	return name, c, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := rperrors.GetCode(err)
	if code == "" {
		code = rperrors.ErrCodeInternal
	}
	writeJSON(w, statusFor(err, code), map[string]string{
		"code":  string(code),
		"error": rperrors.UserMessage(err),
	})
}

func statusFor(err error, code rperrors.Code) int {
	switch {
	case rperrors.IsInvalid(err):
		return http.StatusBadRequest
	case rperrors.IsNotFound(err):
		return http.StatusNotFound
	case code == rperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case code == rperrors.ErrCodeNetwork || code == rperrors.ErrCodeTimeout:
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, integrations.ErrNetwork):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
