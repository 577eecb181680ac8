package http

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/forms"
)

// entryRoutes binds the shared income/expense handlers to one kind.
type entryRoutes struct {
	kind   core.Kind
	title  string
	parse  func(url.Values) forms.EntryForm
	load   func(ctx context.Context, userID, id int64) (forms.EntryForm, error)
	create func(ctx context.Context, userID int64, f forms.EntryForm) error
	update func(ctx context.Context, userID, id int64, f forms.EntryForm) error
	remove func(ctx context.Context, userID, id int64) error
}

func (s *Server) incomeRoutes() entryRoutes {
	return entryRoutes{
		kind:  core.KindIncome,
		title: "Income",
		parse: forms.ParseIncome,
		load: func(ctx context.Context, userID, id int64) (forms.EntryForm, error) {
			i, err := s.ledger.GetIncome(ctx, userID, id)
			if err != nil {
				return forms.EntryForm{}, err
			}
			return forms.IncomeFormFrom(i), nil
		},
		create: func(ctx context.Context, userID int64, f forms.EntryForm) error {
			_, err := s.ledger.CreateIncome(ctx, userID, f)
			return err
		},
		update: func(ctx context.Context, userID, id int64, f forms.EntryForm) error {
			_, err := s.ledger.UpdateIncome(ctx, userID, id, f)
			return err
		},
		remove: s.ledger.DeleteIncome,
	}
}

func (s *Server) expenseRoutes() entryRoutes {
	return entryRoutes{
		kind:  core.KindExpense,
		title: "Expense",
		parse: forms.ParseExpense,
		load: func(ctx context.Context, userID, id int64) (forms.EntryForm, error) {
			e, err := s.ledger.GetExpense(ctx, userID, id)
			if err != nil {
				return forms.EntryForm{}, err
			}
			return forms.ExpenseFormFrom(e), nil
		},
		create: func(ctx context.Context, userID int64, f forms.EntryForm) error {
			_, err := s.ledger.CreateExpense(ctx, userID, f)
			return err
		},
		update: func(ctx context.Context, userID, id int64, f forms.EntryForm) error {
			_, err := s.ledger.UpdateExpense(ctx, userID, id, f)
			return err
		},
		remove: s.ledger.DeleteExpense,
	}
}

func (e entryRoutes) addPath() string { return "/" + string(e.kind) + "/add" }

func (e entryRoutes) editPath(id int64) string {
	return "/" + string(e.kind) + "/" + strconv.FormatInt(id, 10) + "/edit"
}

func (e entryRoutes) deletePath(id int64) string {
	return "/" + string(e.kind) + "/" + strconv.FormatInt(id, 10) + "/delete"
}

// renderEntryForm shows the add or edit form with the user's categories of
// the matching kind as choices.
func (s *Server) renderEntryForm(w http.ResponseWriter, r *http.Request, user core.User, e entryRoutes, status int, p *page) {
	choices, err := s.ledger.CategoriesByKind(r.Context(), user.ID, e.kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p.Kind = e.kind
	p.Choices = choices
	if p.Editing {
		p.Title = "Edit " + e.title
	} else {
		p.Title = "Add " + e.title
	}
	s.render(w, r, status, "entry_form.html", p)
}

func (s *Server) handleEntryNew(e entryRoutes) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, user core.User) {
		now := time.Now()
		f := forms.EntryForm{
			Kind: e.kind,
			Date: core.NewDate(now.Year(), int(now.Month()), now.Day()).String(),
		}
		s.renderEntryForm(w, r, user, e, http.StatusOK, &page{Form: f, Action: e.addPath()})
	}
}

func (s *Server) handleEntryCreate(e entryRoutes) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, user core.User) {
		f := e.parse(r.PostForm)
		err := e.create(r.Context(), user.ID, f)
		if verr, ok := core.AsValidation(err); ok {
			s.renderEntryForm(w, r, user, e, http.StatusUnprocessableEntity, &page{
				Form:   f,
				Errors: verr.Fields,
				Action: e.addPath(),
			})
			return
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.setFlash(w, flashSuccess, "Your "+string(e.kind)+" has been added successfully.")
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
	}
}

func (s *Server) handleEntryEdit(e entryRoutes) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, user core.User) {
		id, ok := pathID(r)
		if !ok {
			s.renderError(w, r, http.StatusNotFound)
			return
		}
		f, err := e.load(r.Context(), user.ID, id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.renderEntryForm(w, r, user, e, http.StatusOK, &page{
			Form:         f,
			Action:       e.editPath(id),
			DeleteAction: e.deletePath(id),
			Editing:      true,
		})
	}
}

func (s *Server) handleEntryUpdate(e entryRoutes) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, user core.User) {
		id, ok := pathID(r)
		if !ok {
			s.renderError(w, r, http.StatusNotFound)
			return
		}
		f := e.parse(r.PostForm)
		err := e.update(r.Context(), user.ID, id, f)
		if verr, ok := core.AsValidation(err); ok {
			s.renderEntryForm(w, r, user, e, http.StatusUnprocessableEntity, &page{
				Form:         f,
				Errors:       verr.Fields,
				Action:       e.editPath(id),
				DeleteAction: e.deletePath(id),
				Editing:      true,
			})
			return
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.setFlash(w, flashSuccess, "Your "+string(e.kind)+" has been updated successfully.")
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
	}
}

func (s *Server) handleEntryDelete(e entryRoutes) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, user core.User) {
		id, ok := pathID(r)
		if !ok {
			s.renderError(w, r, http.StatusNotFound)
			return
		}
		if err := e.remove(r.Context(), user.ID, id); err != nil {
			s.fail(w, r, err)
			return
		}
		s.setFlash(w, flashSuccess, "Your "+string(e.kind)+" has been deleted successfully.")
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
	}
}
