package http

import (
	"net/http"
)

// handleStats serves GET /api/stats?period=week|month|year&date=YYYY-MM-DD.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	period, anchor, err := parseStatsQuery(r.URL.Query(), s.now(), s.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rep, err := s.reports.Report(r.Context(), period, anchor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(rep))
}

func (s *Server) handleBudgetToday(w http.ResponseWriter, r *http.Request) {
	b, err := s.budget.Today(r.Context(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBudgetResponse(b))
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.settings.GetSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSettingsResponse(st))
}

// handlePutSettings applies the fields present in the body on top of the
// stored settings.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	patch, err := parseSettingsPatch(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	current, err := s.settings.GetSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated := patch.apply(current)
	if err := s.settings.SaveSettings(r.Context(), updated); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSettingsResponse(updated))
}
