package server

import (
	"mime/multipart"
	"net/http"
	"strings"
)

type fieldError struct {
	Field   string
	Message string
}

const (
	msgRequired    = "This field is required."
	msgCSRFMissing = "The CSRF token is missing."
	msgCSRFInvalid = "The CSRF token is invalid."
)

func checkCSRF(expected, submitted string) []fieldError {
	switch {
	case submitted == "":
		return []fieldError{{Field: "CSRF Token", Message: msgCSRFMissing}}
	case !validCSRF(expected, submitted):
		return []fieldError{{Field: "CSRF Token", Message: msgCSRFInvalid}}
	}
	return nil
}

type loginForm struct {
	Username  string
	Password  string
	Next      string
	CSRFToken string
}

func parseLoginForm(r *http.Request) loginForm {
	return loginForm{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Password:  r.PostFormValue("password"),
		Next:      r.PostFormValue("next"),
		CSRFToken: r.PostFormValue("csrf_token"),
	}
}

func (f loginForm) validate(csrf string) []fieldError {
	errs := checkCSRF(csrf, f.CSRFToken)
	if f.Username == "" {
		errs = append(errs, fieldError{Field: "Username", Message: msgRequired})
	}
	if f.Password == "" {
		errs = append(errs, fieldError{Field: "Password", Message: msgRequired})
	}
	return errs
}

// uploadForm holds a parsed multipart upload. File is nil when the browser
// sent no file.
type uploadForm struct {
	File      multipart.File
	Header    *multipart.FileHeader
	CSRFToken string
}

func (f uploadForm) validate(csrf string) []fieldError {
	return checkCSRF(csrf, f.CSRFToken)
}

func (f uploadForm) hasFile() bool {
	return f.File != nil && f.Header != nil && f.Header.Filename != ""
}
