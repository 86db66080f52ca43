package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/schedule"
	"github.com/jonathan/outreach-tracker/internal/types"
	"go.uber.org/zap"
)

// parseCompanyID reads the {id} path value, writing a 400 when it is not a UUID.
func (s *Server) parseCompanyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid company ID")
		return uuid.Nil, false
	}
	return id, true
}

// loadCompany fetches a company with its communications, writing a 404 when it does not exist.
func (s *Server) loadCompany(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*db.Company, bool) {
	company, err := s.db.GetCompanyByID(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return nil, false
	}
	if company == nil {
		s.errorResponse(w, http.StatusNotFound, "Company not found")
		return nil, false
	}
	return company, true
}

// handleListCompanies lists companies with their current follow-up status
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 200)
	if limit <= 0 {
		limit = 50
	}
	offset := parseQueryInt(r, "offset", 0, 0)
	search := r.URL.Query().Get("q")

	companies, total, err := s.db.ListCompanies(r.Context(), db.CompanyFilters{
		Search: search,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	now := s.now()
	views := make([]types.CompanyView, 0, len(companies))
	for i := range companies {
		view, err := toCompanyView(&companies[i], now, false)
		if err != nil {
			if !errors.Is(err, schedule.ErrInvalidEvent) {
				s.serviceError(w, r, err)
				return
			}
			s.log.Warn("listing company with unschedulable history",
				zap.String("company_id", companies[i].ID.String()),
				zap.Error(err))
		}
		views = append(views, view)
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"companies": views,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// handleCreateCompany creates a company with no communications
func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCompanyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	company := &db.Company{
		Name:                     req.Name,
		Location:                 req.Location,
		LinkedInProfile:          req.LinkedInProfile,
		Emails:                   req.Emails,
		PhoneNumbers:             req.PhoneNumbers,
		Comments:                 req.Comments,
		CommunicationPeriodicity: req.CommunicationPeriodicity,
	}
	if err := s.db.CreateCompany(r.Context(), company); err != nil {
		s.serviceError(w, r, err)
		return
	}

	view, err := toCompanyView(company, s.now(), true)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, view)
}

// handleGetCompany retrieves a company with its full communication history
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseCompanyID(w, r)
	if !ok {
		return
	}
	company, ok := s.loadCompany(w, r, id)
	if !ok {
		return
	}

	view, err := toCompanyView(company, s.now(), true)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

// handleUpdateCompany applies a partial update
func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseCompanyID(w, r)
	if !ok {
		return
	}

	var req types.UpdateCompanyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	company, err := s.db.UpdateCompany(r.Context(), id, db.CompanyUpdate{
		Name:                     req.Name,
		Location:                 req.Location,
		LinkedInProfile:          req.LinkedInProfile,
		Emails:                   req.Emails,
		PhoneNumbers:             req.PhoneNumbers,
		Comments:                 req.Comments,
		CommunicationPeriodicity: req.CommunicationPeriodicity,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	view, err := toCompanyView(company, s.now(), true)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

// handleDeleteCompany deletes a company and its communications
func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseCompanyID(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteCompany(r.Context(), id); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdatePeriodicity changes how often a company should be contacted
// and returns the recomputed status.
func (s *Server) handleUpdatePeriodicity(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseCompanyID(w, r)
	if !ok {
		return
	}

	var req types.UpdatePeriodicityRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.db.UpdatePeriodicity(r.Context(), id, req.CommunicationPeriodicity); err != nil {
		s.serviceError(w, r, err)
		return
	}

	company, ok := s.loadCompany(w, r, id)
	if !ok {
		return
	}
	view, err := toCompanyView(company, s.now(), false)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}
