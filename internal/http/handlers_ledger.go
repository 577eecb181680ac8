package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, user core.User) {
	dash, err := s.ledger.Dashboard(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", &page{Title: "Dashboard", Dashboard: dash})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request, user core.User) {
	txs, err := s.ledger.Transactions(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "transactions.html", &page{Title: "Transactions", Transactions: txs})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request, user core.User) {
	cats, err := s.ledger.ListCategories(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "categories.html", &page{Title: "Categories", Categories: cats})
}
