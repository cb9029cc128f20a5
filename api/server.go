// Package api - Thin HTTP layer over the pricing engine and store.
// The API is ONLY responsible for: input decoding, engine orchestration,
// output serialization. The API NEVER computes a price itself.
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fenquote/adapters/storage"
	"fenquote/core/catalog"
	"fenquote/internal/errors"
	"fenquote/internal/logging"
)

// Server is the API server
type Server struct {
	store   storage.Store
	mux     *http.ServeMux
	version string
	log     *zap.Logger
}

// NewServer creates an API server over a store
func NewServer(store storage.Store, buildVersion string) *Server {
	s := &Server{
		store:   store,
		mux:     http.NewServeMux(),
		version: buildVersion,
		log:     logging.Named("api"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	// Pricing
	s.mux.HandleFunc("POST /line-items", s.handlePriceLineItem)
	s.mux.HandleFunc("POST /quotes/price", s.handlePriceQuote)
	s.mux.HandleFunc("GET /addons/available", s.handleAvailableAddons)

	// Quote history
	s.mux.HandleFunc("POST /quotes/{id}/versions", s.handleCreateQuoteVersion)
	s.mux.HandleFunc("GET /quotes/{id}/versions", s.handleListQuoteVersions)

	// Published pricing versions
	s.mux.HandleFunc("GET /pricing-versions", s.handleListPricingVersions)
	s.mux.HandleFunc("POST /pricing-versions", s.handlePublishPricingVersion)
	s.mux.HandleFunc("GET /pricing-versions/current", s.handleCurrentPricingVersion)
	s.mux.HandleFunc("GET /pricing-versions/{id}/export", s.handleExportPricingVersion)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// activeCatalog resolves what quotes price against; the rule lives in
// storage so the CLI prices identically.
func (s *Server) activeCatalog(ctx context.Context) (*catalog.Catalog, error) {
	return storage.ActiveCatalog(ctx, s.store)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version": s.version,
		"engine":  "fenquote",
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("response encoding failed", zap.Error(err))
	}
}

// writeError maps an error to the envelope {error:{code,message}} with
// a status derived from its type.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := string(errors.TypeInternal)
	message := err.Error()
	status := http.StatusInternalServerError

	var typed *errors.Error
	if stderrors.As(err, &typed) {
		code = string(typed.Type)
		message = typed.Message
		if typed.Cause != nil {
			message += ": " + typed.Cause.Error()
		}
		status = statusFor(typed.Type)
	}
	if stderrors.Is(err, storage.ErrVersionExists) {
		code = "VERSION_EXISTS"
		message = err.Error()
		status = http.StatusConflict
	}

	s.writeJSON(w, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}, status)
}

func statusFor(t errors.Type) int {
	switch t {
	case errors.TypeInput,
		errors.TypeParsing,
		errors.TypeInvalidConfiguration,
		errors.TypeExclusiveGroupConflict,
		errors.TypeNegativeUplift,
		errors.TypePriceFloorViolation,
		errors.TypeInvalidVersionFormat:
		return http.StatusBadRequest
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeNotSupported:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) decode(r *http.Request, into interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return errors.Parsing("request body is not valid JSON", err)
	}
	return nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.log.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Duration("duration", time.Since(start)),
	)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s)
}
