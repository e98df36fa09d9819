package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"duitku/internal/core"
	applog "duitku/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	txs, err := s.transactions.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]transactionResponse, len(txs))
	for i, t := range txs {
		out[i] = newTransactionResponse(t, s.loc)
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := parseTransaction(NewRequestBodyParser(r), s.now(), s.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.logTransaction(r, applog.OpCreate, saved)
	writeJSON(w, http.StatusCreated, newTransactionResponse(saved, s.loc))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.transactions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(t, s.loc))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := parseTransaction(NewRequestBodyParser(r), s.now(), s.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t.ID = chi.URLParam(r, "id")

	saved, err := s.transactions.Update(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.logTransaction(r, applog.OpUpdate, saved)
	writeJSON(w, http.StatusOK, newTransactionResponse(saved, s.loc))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.transactions.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
		applog.NewFields().WithOperation(applog.OpDelete).WithTransaction(id, "", "", "").ToSlice()...)
	w.WriteHeader(http.StatusNoContent)
}

// handleCandidate turns an extraction result into an unsaved expense draft.
func (s *Server) handleCandidate(w http.ResponseWriter, r *http.Request) {
	c, category, err := parseCandidate(NewRequestBodyParser(r), s.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	draft := c.ToTransaction(category, s.now().In(s.loc))
	resp := draftResponse{Transaction: newTransactionResponse(draft, s.loc), Complete: true}
	if err := draft.Validate(); err != nil {
		resp.Complete = false
		resp.Problem = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) logTransaction(r *http.Request, op string, t core.Transaction) {
	fields := applog.NewFields().
		WithOperation(op).
		WithTransaction(t.ID, t.Kind.String(), t.Category, t.Amount.String())
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction saved", fields.ToSlice()...)
}
