package server

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"file-portal/internal/files"
)

// handleFiles lists every stored file. The repository walks its root on
// each call; the names are sorted here only for display.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	names, err := files.ListAll(r.Context(), s.cfg.Files)
	if err != nil {
		s.logError(r, "list_failed", err)
		stateFrom(r).flash("danger", "The file list could not be loaded.")
		s.render(w, r, http.StatusInternalServerError, "files", page{Title: "Files"})
		return
	}
	slices.Sort(names)

	s.render(w, r, http.StatusOK, "files", page{Title: "Files", Files: names})
}

// handleFetch streams /uploads/{path} from the repository. Unknown files
// and paths that try to leave the upload root both get the 404 page.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			s.handleNotFound(w, r)
			return
		}
		name = unescaped
	}

	start := time.Now()
	f, err := s.cfg.Files.Fetch(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrAccessDenied):
			s.log.WarnContext(r.Context(), "fetch_denied", "rid", RequestIDFromContext(r.Context()), "path", name)
		case errors.Is(err, files.ErrNotFound):
		default:
			s.metrics.RecordDownloadError()
			s.logError(r, "fetch_failed", err, "path", name)
		}
		s.handleNotFound(w, r)
		return
	}
	defer f.Content.Close()

	if f.ContentType != "" {
		w.Header().Set("Content-Type", f.ContentType)
	}
	if cd := contentDisposition(f.Name, f.ContentType); cd != "" {
		w.Header().Set("Content-Disposition", cd)
	}
	http.ServeContent(w, r, f.Name, f.ModTime, f.Content)
	s.metrics.RecordDownload(f.Size, time.Since(start))
}

// activeTypes can run script when rendered by a browser.
var activeTypes = []string{
	"text/html",
	"application/xhtml+xml",
	"image/svg+xml",
	"text/xml",
	"application/xml",
	"text/javascript",
	"application/javascript",
	"application/x-javascript",
}

// contentDisposition forces a download for uploads that would otherwise
// render as active content on the portal's origin. Files of unknown type
// are downloaded too, since the browser would otherwise see the sniffed type.
func contentDisposition(name, contentType string) string {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil && !slices.Contains(activeTypes, mediaType) {
			return ""
		}
	}
	return mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(name)})
}
