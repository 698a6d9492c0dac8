// Package api - Endpoint handlers
package api

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"catalog-cost/core/pricing"
	"catalog-cost/core/types"
	"catalog-cost/internal/errors"
)

// handleQuote handles POST /quote
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := s.parseJSON(r, &req); err != nil {
		s.writeError(w, r, "invalid JSON body", http.StatusBadRequest)
		return
	}

	roleID := strings.TrimSpace(req.RoleID)
	if roleID == "" {
		s.writeError(w, r, "role_id is required", http.StatusBadRequest)
		return
	}

	role, ok := s.catalog.Load().Role(roleID)
	if !ok {
		s.writeError(w, r, fmt.Sprintf("role not found: %s", roleID), http.StatusNotFound)
		return
	}
	if role.Pricing == nil || (role.Summary != nil && role.Summary.Implicit) {
		s.writeError(w, r, "pricing metadata not available", http.StatusBadRequest)
		return
	}

	doc := role.Pricing
	offeringID := strings.TrimSpace(req.OfferingID)
	planID := strings.TrimSpace(req.PlanID)
	if offeringID == "" {
		if offering := pricing.SelectOffering(doc.Offerings, planID, "", doc.DefaultOfferingID); offering != nil {
			offeringID = offering.ID
		}
	}
	if planID == "" {
		if offering, ok := doc.Offering(offeringID); ok {
			if plan := pricing.SelectPlan(offering, doc.DefaultPlanID); plan != nil {
				planID = plan.ID
			}
		}
	}

	quote, err := pricing.EvaluateQuote(doc, offeringID, planID, req.Inputs,
		types.Currency(req.Currency), types.Region(req.Region), req.IncludeSetupFee)
	if err != nil {
		s.writeError(w, r, errorDetail(err), http.StatusBadRequest)
		return
	}

	s.writeJSON(w, quote, http.StatusOK)
}

// handleRoles handles GET /roles
func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	roles := s.catalog.Load().Roles(nil)

	out := make([]RoleSummary, 0, len(roles))
	for i := range roles {
		out = append(out, roleSummary(&roles[i]))
	}
	s.writeJSON(w, out, http.StatusOK)
}

// handleRole handles GET /roles/{id}
func (s *Server) handleRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	role, ok := s.catalog.Load().Role(id)
	if !ok {
		s.writeError(w, r, fmt.Sprintf("role not found: %s", id), http.StatusNotFound)
		return
	}
	s.writeJSON(w, role, http.StatusOK)
}

// handleBundles handles GET /bundles
func (s *Server) handleBundles(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.catalog.Load().Bundles(nil), http.StatusOK)
}

// handleBundle handles GET /bundles/{id...}
func (s *Server) handleBundle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	bundle, ok := s.catalog.Load().Bundle(id)
	if !ok {
		s.writeError(w, r, fmt.Sprintf("bundle not found: %s", id), http.StatusNotFound)
		return
	}
	s.writeJSON(w, bundle, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.catalog.Load().Stats()
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"roles":   stats.Roles,
		"bundles": stats.Bundles,
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version": s.version,
		"service": "catalog-cost",
	}, http.StatusOK)
}

func roleSummary(role *types.Role) RoleSummary {
	return RoleSummary{
		ID:          role.ID,
		Title:       role.Title,
		Description: role.Description,
		Status:      role.Status,
		Tags:        role.Tags,
		Categories:  role.Categories,
		Summary:     role.Summary,
	}
}

// errorDetail strips the taxonomy prefix so clients see the bare
// message in the detail envelope.
func errorDetail(err error) string {
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
