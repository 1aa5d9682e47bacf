package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"file-portal/internal/users"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "about", "login", "upload", "files", "404", "error"}

var templateFuncs = template.FuncMap{
	// fileURL escapes each path segment of a listed file.
	"fileURL": func(name string) string {
		segs := strings.Split(name, "/")
		for i, seg := range segs {
			segs[i] = url.PathEscape(seg)
		}
		return "/uploads/" + strings.Join(segs, "/")
	},
}

func mustParsePages() map[string]*template.Template {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pages[name] = template.Must(template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return pages
}

// page is the data every template receives. Fields a page does not use
// stay zero.
type page struct {
	Title     string
	User      *users.UserProfile
	Flashes   []flash
	CSRFToken string
	Errors    []fieldError

	Username  string
	Next      string
	Files     []string
	AboutName string
	Message   string
}

// render executes a page into a buffer first so a template fault turns
// into a clean 500 instead of half a page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.logError(r, "unknown_template", nil, "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	st := stateFrom(r)
	data.User = st.user
	data.CSRFToken = st.csrf
	data.Flashes = s.takeFlashes(w, st)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.logError(r, "render_failed", err, "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
