package server

import (
	"net/http"

	"github.com/jonathan/outreach-tracker/internal/db"
	"github.com/jonathan/outreach-tracker/internal/reminder"
	"github.com/jonathan/outreach-tracker/internal/types"
	"go.uber.org/zap"
)

// handleListCommunications returns a company's communications in the order they were recorded
func (s *Server) handleListCommunications(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseCompanyID(w, r)
	if !ok {
		return
	}
	company, ok := s.loadCompany(w, r, id)
	if !ok {
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"communications": toCommunicationViews(company.Communications),
		"count":          len(company.Communications),
	})
}

// handleAddCommunication records a communication and returns it with the company's new status
func (s *Server) handleAddCommunication(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseCompanyID(w, r)
	if !ok {
		return
	}

	var req types.CreateCommunicationRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	comm := &db.Communication{Type: req.Type, Date: req.Date, Notes: req.Notes}
	if err := s.db.AddCommunication(r.Context(), id, comm); err != nil {
		s.serviceError(w, r, err)
		return
	}

	company, ok := s.loadCompany(w, r, id)
	if !ok {
		return
	}
	status, err := company.Schedule(s.now())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"communication": toCommunicationView(*comm),
		"schedule":      status,
	})
}

// handleGetSchedule returns only the computed follow-up status of a company
func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseCompanyID(w, r)
	if !ok {
		return
	}
	company, ok := s.loadCompany(w, r, id)
	if !ok {
		return
	}

	status, err := company.Schedule(s.now())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, status)
}

// handleListFollowUps lists companies that are overdue or due today, earliest due first.
// All companies are evaluated against the same instant.
func (s *Server) handleListFollowUps(w http.ResponseWriter, r *http.Request) {
	filter, ok := types.ParseFollowUpFilter(r.URL.Query().Get("filter"))
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "filter must be one of: overdue, due_today, all")
		return
	}

	companies, err := s.db.ListAllCompanies(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	followUps := reminder.FollowUps(companies, s.now(), filter, func(c *db.Company, err error) {
		s.log.Warn("skipping company with unschedulable history",
			zap.String("company_id", c.ID.String()), zap.Error(err))
	})

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"filter":     filter,
		"count":      len(followUps),
		"follow_ups": followUps,
	})
}
