// Package api - Quote pricing handlers
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"fenquote/core/catalog"
	"fenquote/core/pricing"
	"fenquote/internal/errors"
)

// PriceQuoteRequest is the body for POST /quotes/price and
// POST /quotes/{id}/versions
type PriceQuoteRequest struct {
	Name        string                    `json:"name,omitempty"`
	LineItems   []pricing.LineItemRequest `json:"lineItems"`
	JobAddonIDs []string                  `json:"jobAddonIds,omitempty"`
	SalesUplift decimal.Decimal           `json:"salesUplift"`
	Metadata    map[string]string         `json:"metadata,omitempty"`
}

func (s *Server) handlePriceLineItem(w http.ResponseWriter, r *http.Request) {
	var req pricing.LineItemRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.ProductID == "" {
		s.writeError(w, errors.New(errors.TypeInput, "productId is required"))
		return
	}

	cat, err := s.activeCatalog(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	product, ok := cat.Products[req.ProductID]
	if !ok {
		s.writeError(w, errors.NotFound("product", req.ProductID))
		return
	}

	item, err := pricing.CalculateLineItem(product, req.Width, req.Height, req.SelectedAddonIDs, cat.Addons)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, item, http.StatusOK)
}

func (s *Server) handlePriceQuote(w http.ResponseWriter, r *http.Request) {
	var req PriceQuoteRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.LineItems) == 0 {
		s.writeError(w, errors.New(errors.TypeInput, "lineItems is required"))
		return
	}

	cat, err := s.activeCatalog(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := &pricing.Quote{
		Name:        req.Name,
		LineItems:   req.LineItems,
		JobAddonIDs: req.JobAddonIDs,
		SalesUplift: req.SalesUplift,
	}
	result, err := pricing.PriceQuote(cat, q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, result, http.StatusOK)
}

// handleCreateQuoteVersion prices the submitted quote state, saves the
// quote, and appends a locked version. The version is immutable from
// here on.
func (s *Server) handleCreateQuoteVersion(w http.ResponseWriter, r *http.Request) {
	quoteID := r.PathValue("id")
	ctx := r.Context()

	var req PriceQuoteRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.LineItems) == 0 {
		s.writeError(w, errors.New(errors.TypeInput, "lineItems is required"))
		return
	}

	cat, err := s.activeCatalog(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	q, err := s.store.Quote(ctx, quoteID)
	if err != nil {
		if !errors.IsType(err, errors.TypeNotFound) {
			s.writeError(w, err)
			return
		}
		q = pricing.NewQuote(req.Name)
		q.ID = quoteID
	}
	if req.Name != "" {
		q.Name = req.Name
	}
	q.LineItems = req.LineItems
	q.JobAddonIDs = req.JobAddonIDs
	q.SalesUplift = req.SalesUplift
	q.UpdatedAt = time.Now().UTC()

	result, err := pricing.PriceQuote(cat, q)
	if err != nil {
		s.writeError(w, err)
		return
	}

	v, err := pricing.NewQuoteVersion(quoteID, result.LineItems, q.SalesUplift, req.Metadata)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.SaveQuote(ctx, q); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.AppendQuoteVersion(ctx, v); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, v, http.StatusCreated)
}

func (s *Server) handleListQuoteVersions(w http.ResponseWriter, r *http.Request) {
	quoteID := r.PathValue("id")
	versions, err := s.store.QuoteVersions(r.Context(), quoteID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"quoteId":  quoteID,
		"versions": versions,
		"count":    len(versions),
	}, http.StatusOK)
}

func (s *Server) handleAvailableAddons(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	productID := query.Get("product")
	if productID == "" {
		s.writeError(w, errors.New(errors.TypeInput, "product query parameter is required"))
		return
	}
	width, err := strconv.ParseFloat(query.Get("width"), 64)
	if err != nil {
		s.writeError(w, errors.New(errors.TypeInput, "width must be a number"))
		return
	}
	height, err := strconv.ParseFloat(query.Get("height"), 64)
	if err != nil {
		s.writeError(w, errors.New(errors.TypeInput, "height must be a number"))
		return
	}

	cat, err := s.activeCatalog(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	product, ok := cat.Products[productID]
	if !ok {
		s.writeError(w, errors.NotFound("product", productID))
		return
	}

	ui := pricing.UnitedInches(width, height)
	ids := pricing.AvailableAddons(product, ui, cat.Addons)
	addons := make([]*catalog.Addon, 0, len(ids))
	for _, id := range ids {
		addons = append(addons, cat.Addons[id])
	}

	s.writeJSON(w, map[string]interface{}{
		"product": productID,
		"ui":      ui,
		"addons":  addons,
		"count":   len(addons),
	}, http.StatusOK)
}
