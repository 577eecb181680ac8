package http

import (
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/forms"
)

func categoryEditPath(id int64) string {
	return "/category/" + strconv.FormatInt(id, 10) + "/edit"
}

func categoryDeletePath(id int64) string {
	return "/category/" + strconv.FormatInt(id, 10) + "/delete"
}

func (s *Server) handleCategoryNew(w http.ResponseWriter, r *http.Request, user core.User) {
	s.render(w, r, http.StatusOK, "category_form.html", &page{
		Title:  "Add Category",
		Form:   forms.CategoryForm{},
		Action: "/category/add",
	})
}

func (s *Server) handleCategoryCreate(w http.ResponseWriter, r *http.Request, user core.User) {
	f := forms.ParseCategory(r.PostForm)
	_, err := s.ledger.CreateCategory(r.Context(), user.ID, f)
	if verr, ok := core.AsValidation(err); ok {
		s.render(w, r, http.StatusUnprocessableEntity, "category_form.html", &page{
			Title:  "Add Category",
			Form:   f,
			Errors: verr.Fields,
			Action: "/category/add",
		})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setFlash(w, flashSuccess, "Category added successfully.")
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

func (s *Server) handleCategoryEdit(w http.ResponseWriter, r *http.Request, user core.User) {
	id, ok := pathID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound)
		return
	}
	c, err := s.ledger.GetCategory(r.Context(), user.ID, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "category_form.html", &page{
		Title:        "Edit Category",
		Form:         forms.CategoryFormFrom(c),
		Action:       categoryEditPath(id),
		DeleteAction: categoryDeletePath(id),
		Editing:      true,
	})
}

func (s *Server) handleCategoryUpdate(w http.ResponseWriter, r *http.Request, user core.User) {
	id, ok := pathID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound)
		return
	}
	f := forms.ParseCategory(r.PostForm)
	_, err := s.ledger.UpdateCategory(r.Context(), user.ID, id, f)
	if verr, ok := core.AsValidation(err); ok {
		s.render(w, r, http.StatusUnprocessableEntity, "category_form.html", &page{
			Title:        "Edit Category",
			Form:         f,
			Errors:       verr.Fields,
			Action:       categoryEditPath(id),
			DeleteAction: categoryDeletePath(id),
			Editing:      true,
		})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setFlash(w, flashSuccess, "Category updated successfully.")
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

func (s *Server) handleCategoryDelete(w http.ResponseWriter, r *http.Request, user core.User) {
	id, ok := pathID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound)
		return
	}
	if err := s.ledger.DeleteCategory(r.Context(), user.ID, id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.setFlash(w, flashSuccess, "Category deleted successfully.")
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}
