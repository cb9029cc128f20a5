// Package api - Published pricing version handlers
package api

import (
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"fenquote/core/catalog"
	"fenquote/core/codec"
	"fenquote/core/version"
	"fenquote/internal/errors"
)

// PublishRequest is the body for POST /pricing-versions
type PublishRequest struct {
	Name  string `json:"name,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func (s *Server) handleListPricingVersions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summaries, err := s.store.ListPricingVersions(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	current, err := s.store.CurrentVersionID(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"versions":  summaries,
		"count":     len(summaries),
		"currentId": current,
	}, http.StatusOK)
}

// handlePublishPricingVersion seals the working catalog into a new
// version and makes it current. A catalog that fails validation never
// gets published.
func (s *Server) handlePublishPricingVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PublishRequest
	if err := s.decode(r, &req); err != nil && !stderrors.Is(err, io.EOF) {
		s.writeError(w, err)
		return
	}

	cat, err := s.store.Catalog(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if violations := cat.Validate(catalog.DefaultValidationRules()); len(violations) > 0 {
		msgs := make([]string, len(violations))
		for i, v := range violations {
			msgs[i] = v.Error()
		}
		s.writeError(w, errors.Newf(errors.TypeInvalidConfiguration,
			"catalog failed validation: %s", strings.Join(msgs, "; ")))
		return
	}

	v := version.Publish(cat, req.Name, req.Notes)
	if err := s.store.StorePricingVersion(ctx, v); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.SetCurrentVersionID(ctx, v.ID); err != nil {
		s.writeError(w, err)
		return
	}

	stats := v.Stats()
	s.writeJSON(w, map[string]interface{}{
		"id":        v.ID,
		"name":      v.Name,
		"timestamp": v.Timestamp,
		"notes":     v.Notes,
		"products":  stats.Products,
		"addons":    stats.Addons,
		"current":   true,
	}, http.StatusCreated)
}

func (s *Server) handleCurrentPricingVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := s.store.CurrentVersionID(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if id == "" {
		s.writeError(w, errors.New(errors.TypeNotFound, "no current pricing version set"))
		return
	}

	v, err := s.store.PricingVersion(ctx, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := codec.ExportJSON(v)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleExportPricingVersion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	v, err := s.store.PricingVersion(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var (
		data        []byte
		filename    string
		contentType string
	)
	switch format {
	case "json":
		data, err = codec.ExportJSON(v)
		if err != nil {
			s.writeError(w, err)
			return
		}
		filename = codec.ExportJSONFilename(v)
		contentType = "application/json"
	case "csv":
		data = codec.ExportCSV(v)
		filename = codec.ExportCSVFilename(v)
		contentType = "text/csv"
	default:
		s.writeError(w, errors.Newf(errors.TypeInput, "format must be json or csv, got %q", format))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
