package server

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

//go:embed static/*.txt
var staticFS embed.FS

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home", page{Title: "Home"})
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "about", page{Title: "About", AboutName: s.cfg.AboutName})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "404", page{Title: "Not Found"})
}

// handleUnmatched is the router's NotFound handler. chi ends a route
// param at the first dot, so text assets like /security.policy.txt land
// here rather than on the /{file_name}.txt route.
func (s *Server) handleUnmatched(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if name, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".txt"); ok && name != "" && !strings.Contains(name, "/") {
			s.serveTextFile(w, r, name)
			return
		}
	}
	s.handleNotFound(w, r)
}

// handleTextFile serves /{file_name}.txt from the embedded static assets.
func (s *Server) handleTextFile(w http.ResponseWriter, r *http.Request) {
	s.serveTextFile(w, r, chi.URLParam(r, "file_name"))
}

func (s *Server) serveTextFile(w http.ResponseWriter, r *http.Request, name string) {
	if !fs.ValidPath(name) {
		s.handleNotFound(w, r)
		return
	}

	body, err := fs.ReadFile(staticFS, "static/"+name+".txt")
	if err != nil {
		s.handleNotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
