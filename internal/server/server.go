// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the converter over HTTP: PDF bytes in, PDF/A bytes
// out.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/pdiddy/pdfa-convert/internal/inspect"
	"github.com/pdiddy/pdfa-convert/internal/pdfa"
	"github.com/pdiddy/pdfa-convert/pkg/types"
)

// Defaults applied to zero ServerConfig fields.
const (
	DefaultAddr            = ":8080"
	DefaultMaxUploadBytes  = 50 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

// Converter converts PDF bytes. *pdfa.Converter implements it.
type Converter interface {
	ConvertWithResult(input []byte, opts types.Options) ([]byte, types.Result, error)
}

// Server serves the conversion API.
type Server struct {
	cfg      types.ServerConfig
	defaults types.Options
	conv     Converter
	log      *slog.Logger
}

// New creates a Server. defaults fill in options a request leaves out.
func New(cfg types.ServerConfig, conv Converter, defaults types.Options, logger *slog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{cfg: cfg, defaults: defaults.WithDefaults(), conv: conv, log: logger}
}

// Handler returns the HTTP handler with all routes and middleware. CORS
// headers are only sent when AllowedOrigins is set.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "pdfa-convert"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	if s.cfg.APIToken != "" {
		api.Use(s.requireToken)
	}
	api.HandleFunc("/convert", s.handleConvert).Methods(http.MethodPost)
	api.HandleFunc("/inspect", s.handleInspect).Methods(http.MethodPost)

	if len(s.cfg.AllowedOrigins) == 0 {
		return router
	}
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", headerFlavour, headerIntentAdded},
		MaxAge:         300,
	})
	return c.Handler(router)
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.log.Info("server exited")
	return nil
}

const (
	headerFlavour     = "X-PDFA-Flavour"
	headerIntentAdded = "X-PDFA-Output-Intent-Added"
)

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	out, res, err := s.conv.ConvertWithResult(body, opts)
	if err != nil {
		status := statusFor(err)
		s.log.Warn("conversion failed", "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Header().Set(headerFlavour, "PDF/A-"+res.Options.Part+res.Options.Conformance)
	w.Header().Set(headerIntentAdded, strconv.FormatBool(res.OutputIntentAdded))
	if name := r.URL.Query().Get("filename"); name != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "request body is empty")
		return
	}
	report, err := inspect.Inspect(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// options reads version, part and conformance from the query string.
func (s *Server) options(r *http.Request) (types.Options, error) {
	q := r.URL.Query()
	opts := s.defaults
	if v := q.Get("version"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid version %q", v)
		}
		opts.PDFVersion = f
	}
	if v := q.Get("part"); v != "" {
		opts.Part = v
	}
	if v := q.Get("conformance"); v != "" {
		opts.Conformance = v
	}
	return opts, nil
}

// readBody reads the request body up to the configured limit. It writes the
// error response itself and reports false on failure.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", s.cfg.MaxUploadBytes))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "reading request body: "+err.Error())
		return nil, false
	}
	return body, true
}

// statusFor maps a conversion error to an HTTP status code.
func statusFor(err error) int {
	switch pdfa.KindOf(err) {
	case pdfa.KindInvalidInput, pdfa.KindInvalidOption:
		return http.StatusBadRequest
	case pdfa.KindParseFailure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	want := []byte(s.cfg.APIToken)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
