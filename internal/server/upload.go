package server

import (
	"errors"
	"net/http"
	"time"

	"file-portal/internal/files"
)

// maxUploadMemory is how much of a multipart body is held in memory;
// the rest spills to temporary files.
const maxUploadMemory = 32 << 20

// handleUpload renders the upload form and, on POST, stores the selected
// file exactly once. A POST without a file re-renders the form with a
// notice and leaves storage untouched.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	st := stateFrom(r)
	data := page{Title: "Upload"}

	if r.Method != http.MethodPost {
		s.render(w, r, http.StatusOK, "upload", data)
		return
	}

	form, err := parseUploadForm(r)
	if err != nil {
		s.logError(r, "upload_parse_failed", err)
		st.flash("danger", "The upload could not be read.")
		s.render(w, r, http.StatusBadRequest, "upload", data)
		return
	}
	defer form.close(r)

	if errs := form.validate(st.csrf); len(errs) > 0 {
		data.Errors = errs
		s.render(w, r, http.StatusOK, "upload", data)
		return
	}
	if !form.hasFile() {
		st.flash("danger", "No file selected")
		s.render(w, r, http.StatusOK, "upload", data)
		return
	}

	start := time.Now()
	stored, err := s.cfg.Files.Save(r.Context(), form.Header.Filename, form.File)
	switch {
	case err == nil:
	case errors.Is(err, files.ErrInvalidName):
		s.metrics.RecordUploadError()
		st.flash("danger", "That file name is not allowed. Rename the file and try again.")
		s.render(w, r, http.StatusOK, "upload", data)
		return
	default:
		s.metrics.RecordUploadError()
		s.logError(r, "upload_failed", err, "filename", form.Header.Filename)
		st.flash("danger", "File could not be saved")
		s.redirect(w, r, "/files", http.StatusSeeOther)
		return
	}

	s.metrics.RecordUpload(stored.Size, time.Since(start))
	s.log.InfoContext(r.Context(), "upload_saved",
		"rid", RequestIDFromContext(r.Context()),
		"name", stored.Name,
		"bytes", stored.Size,
		"user", st.user.Username,
	)

	st.flash("success", "File Saved")
	s.redirect(w, r, "/files", http.StatusSeeOther)
}

// parseUploadForm reads the multipart body. A body that is not multipart
// at all carries no file, which is the same as nothing selected.
func parseUploadForm(r *http.Request) (uploadForm, error) {
	err := r.ParseMultipartForm(maxUploadMemory)
	switch {
	case errors.Is(err, http.ErrNotMultipart):
		return uploadForm{CSRFToken: r.PostFormValue("csrf_token")}, nil
	case err != nil:
		return uploadForm{}, err
	}

	form := uploadForm{CSRFToken: r.PostFormValue("csrf_token")}
	f, hdr, err := r.FormFile("file")
	switch {
	case err == nil:
		form.File, form.Header = f, hdr
	case errors.Is(err, http.ErrMissingFile):
	default:
		return uploadForm{}, err
	}
	return form, nil
}

func (f uploadForm) close(r *http.Request) {
	if f.File != nil {
		_ = f.File.Close()
	}
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}
