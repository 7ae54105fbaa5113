package http

import (
	"net/http"
	"strings"

	"idledger/internal/core"
	"idledger/internal/repository"
)

// handleListExpenses returns expenses, optionally only those of one date.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	out := []core.Expense{}
	for _, e := range s.repo.Expenses() {
		if date == "" || e.Date == date {
			out = append(out, e)
		}
	}
	OK(w, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in core.ExpenseInput
	if err := decodeValid(w, r, &in); err != nil {
		s.writeError(w, r, err, string(repository.OpCreate))
		return
	}
	in.Title = strings.TrimSpace(in.Title)

	e, err := s.repo.CreateExpense(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, string(repository.OpCreate))
		return
	}
	logMutation(r, repository.OpCreate, core.CollectionExpenses, []string{e.ID})
	Created(w, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var patch core.ExpensePatch
	err := decodeJSON(w, r, &patch)
	if err == nil {
		err = validateExpensePatch(patch)
	}
	if err == nil {
		err = s.repo.UpdateExpense(r.Context(), r.PathValue("id"), patch)
	}
	if err != nil {
		s.writeError(w, r, err, string(repository.OpUpdate))
		return
	}
	NoContent(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err, string(repository.OpDelete))
		return
	}
	NoContent(w)
}
