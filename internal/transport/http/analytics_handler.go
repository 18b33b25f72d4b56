package http

import (
	"fmt"
	"net/http"
	"strconv"

	"knowledge-check-service/internal/app"
	"knowledge-check-service/internal/domain"
)

type AnalyticsHandler struct {
	service *app.AnalyticsService
}

func NewAnalyticsHandler(service *app.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// AvgScore handles GET /analytics/avg-score/?quiz_id=&user_id=&company_id=.
func (h *AnalyticsHandler) AvgScore(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var scope domain.Scope
	var err error
	if scope.QuizID, err = optionalID(r, "quiz_id"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if scope.UserID, err = optionalID(r, "user_id"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if scope.CompanyID, err = optionalID(r, "company_id"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	avg, err := h.service.AvgScore(r.Context(), callerID, scope)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, avg)
}

// ScoresByTime handles GET /analytics/avg-scores-by-time/?user=me|{id}&company_id=.
func (h *AnalyticsHandler) ScoresByTime(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	userID, err := userParam(r, callerID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	companyID, err := optionalID(r, "company_id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	series, err := h.service.ScoresByTime(r.Context(), callerID, userID, companyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// MembersScoresByTime handles GET /analytics/members-avg-scores-by-time/?company_id=.
func (h *AnalyticsHandler) MembersScoresByTime(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	companyID, err := requiredID(r, "company_id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	series, err := h.service.MembersScoresByTime(r.Context(), callerID, companyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// MyLastAttempts handles GET /analytics/my-last-attempts/?company_id=.
func (h *AnalyticsHandler) MyLastAttempts(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	companyID, err := optionalID(r, "company_id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	last, err := h.service.UserLastAttempts(r.Context(), callerID, callerID, companyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, last)
}

// MembersLastAttempt handles GET /analytics/members-last-attempt/?company_id=.
func (h *AnalyticsHandler) MembersLastAttempt(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	companyID, err := requiredID(r, "company_id")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	last, err := h.service.MembersLastAttempt(r.Context(), callerID, companyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, last)
}

func (h *AnalyticsHandler) caller(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller")
	}
	return id, ok
}

func optionalID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &id, nil
}

func requiredID(r *http.Request, name string) (int64, error) {
	id, err := optionalID(r, name)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, fmt.Errorf("%s is required", name)
	}
	return *id, nil
}

// userParam resolves user (or user_id); empty and "me" mean the caller.
func userParam(r *http.Request, callerID int64) (int64, error) {
	raw := r.URL.Query().Get("user")
	if raw == "" {
		raw = r.URL.Query().Get("user_id")
	}
	if raw == "" || raw == "me" {
		return callerID, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("user must be an integer or 'me'")
	}
	return id, nil
}
