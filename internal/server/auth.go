// auth.go - Login and logout pages on top of the session authenticator.
package server

import (
	"errors"
	"net/http"

	"file-portal/internal/auth"
)

// handleLogin renders the login form and, on POST, checks the credentials.
// A wrong password keeps the browser anonymous and re-renders the form
// with a notice; success redirects to /upload or a validated next path.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	st := stateFrom(r)

	if r.Method != http.MethodPost {
		next, _ := safeNext(r.URL.Query().Get("next"))
		s.render(w, r, http.StatusOK, "login", page{Title: "Login", Next: next})
		return
	}

	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login", page{Title: "Login"})
		return
	}
	form := parseLoginForm(r)
	next, _ := safeNext(form.Next)
	data := page{Title: "Login", Username: form.Username, Next: next}

	if errs := form.validate(st.csrf); len(errs) > 0 {
		data.Errors = errs
		s.render(w, r, http.StatusOK, "login", data)
		return
	}

	user, err := s.cfg.Auth.Authenticate(w, r, form.Username, form.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.metrics.RecordLoginAttempt(false)
		st.flash("danger", "Invalid username or password")
		s.render(w, r, http.StatusOK, "login", data)
		return
	case errors.Is(err, auth.ErrLockedOut):
		s.metrics.RecordLoginAttempt(false)
		st.flash("danger", "Too many failed login attempts. Please try again later.")
		s.render(w, r, http.StatusTooManyRequests, "login", data)
		return
	default:
		s.logError(r, "login_failed", err)
		s.render(w, r, http.StatusInternalServerError, "error", page{Title: "Error", Message: "Login is unavailable right now."})
		return
	}

	s.metrics.RecordLoginAttempt(true)
	s.log.InfoContext(r.Context(), "login", "rid", RequestIDFromContext(r.Context()), "user", user.Username)

	st.flash("success", "Logged in successfully!")
	if next == "" {
		next = "/upload"
	}
	s.redirect(w, r, next, http.StatusSeeOther)
}

// handleLogout ends the session and returns to the home page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	st := stateFrom(r)
	s.cfg.Auth.EndSession(w, r)
	if st.user != nil {
		s.log.InfoContext(r.Context(), "logout", "rid", RequestIDFromContext(r.Context()), "user", st.user.Username)
	}
	st.user = nil

	st.flash("success", "You have been logged out successfully!")
	s.redirect(w, r, "/", http.StatusSeeOther)
}
