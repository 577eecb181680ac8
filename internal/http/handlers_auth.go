package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/forms"
)

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", &page{Title: "Register", Form: forms.RegisterForm{}})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	f := forms.ParseRegister(r.PostForm)

	_, err := s.auth.Register(r.Context(), f)
	if verr, ok := core.AsValidation(err); ok {
		f.Password, f.ConfirmPassword = "", ""
		s.render(w, r, http.StatusUnprocessableEntity, "register.html", &page{
			Title:  "Register",
			Form:   f,
			Errors: verr.Fields,
		})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.setFlash(w, flashSuccess, "Congratulations, you are now a registered user!")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", &page{Title: "Sign In", Form: forms.LoginForm{}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	f := forms.ParseLogin(r.PostForm)

	sess, err := s.auth.Login(r.Context(), f)
	if verr, ok := core.AsValidation(err); ok {
		f.Password = ""
		s.render(w, r, http.StatusUnprocessableEntity, "login.html", &page{
			Title:  "Sign In",
			Form:   f,
			Errors: verr.Fields,
		})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.setSessionCookie(w, sess)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, user core.User) {
	cs, _ := sessionFrom(r.Context())
	if err := s.auth.Logout(r.Context(), cs.token); err != nil {
		s.fail(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	s.setFlash(w, flashInfo, "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
