package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"file-portal/internal/users"
)

const (
	stateKey        ctxKey = "request_state"
	flashCookieName        = "fp_flash"
)

type flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// requestState is what one request knows about its browser: who is logged
// in, the CSRF token and the pending flash notices.
type requestState struct {
	user     *users.UserProfile
	csrf     string
	incoming []flash // carried over by the flash cookie
	outgoing []flash // added while handling this request
}

func stateFrom(r *http.Request) *requestState {
	if st, ok := r.Context().Value(stateKey).(*requestState); ok {
		return st
	}
	return &requestState{}
}

func (st *requestState) flash(category, message string) {
	f := flash{Category: category, Message: message}
	if slices.Contains(st.incoming, f) || slices.Contains(st.outgoing, f) {
		return
	}
	st.outgoing = append(st.outgoing, f)
}

// stateMiddleware resolves the session and loads flash notices once per request.
func (s *Server) stateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := &requestState{incoming: readFlashes(r)}

		if user, ok := s.cfg.Auth.CurrentUser(r); ok {
			st.user = &user
		}

		token, err := s.csrfToken(w, r)
		if err != nil {
			s.logError(r, "csrf_token_failed", err)
		}
		st.csrf = token

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), stateKey, st)))
	})
}

// requireAuth sends anonymous requests to the login page without running next.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := stateFrom(r)
		if st.user == nil {
			st.flash("info", "Please log in to access this page.")
			s.redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// safeNext accepts only local absolute paths so a crafted link cannot
// bounce a fresh login to another site.
func safeNext(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "", false
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return next, true
}

func readFlashes(r *http.Request) []flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var out []flash
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// takeFlashes returns every pending notice and clears the flash cookie
// if the browser sent one.
func (s *Server) takeFlashes(w http.ResponseWriter, st *requestState) []flash {
	out := append(st.incoming, st.outgoing...)
	if len(st.incoming) > 0 {
		s.setFlashCookie(w, nil)
	}
	st.incoming, st.outgoing = nil, nil
	return out
}

func (s *Server) setFlashCookie(w http.ResponseWriter, notices []flash) {
	c := &http.Cookie{
		Name:     flashCookieName,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cfg.CookieSecure,
	}
	if len(notices) == 0 {
		c.MaxAge = -1
	} else {
		raw, _ := json.Marshal(notices)
		c.Value = base64.RawURLEncoding.EncodeToString(raw)
	}
	http.SetCookie(w, c)
}

// redirect hands pending notices to the next page through the flash cookie.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, target string, code int) {
	st := stateFrom(r)
	if pending := append(st.incoming, st.outgoing...); len(pending) > 0 {
		s.setFlashCookie(w, pending)
		st.incoming, st.outgoing = nil, nil
	}
	http.Redirect(w, r, target, code)
}
