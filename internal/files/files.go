// Package files is the file repository: it stores uploaded files under a
// root (a local directory or an object-store prefix), enumerates them and
// serves them back by relative path.
package files

import (
	"context"
	"errors"
	"io"
	"iter"
	"mime"
	"path"
	"strings"
	"time"
)

// ReservedMarker is never listed, even when present in the root.
const ReservedMarker = ".DS_Store"

// tempPrefix marks in-flight uploads on disk.
const tempPrefix = ".fp-upload-"

var (
	ErrInvalidName  = errors.New("invalid file name")
	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("file not found")
	ErrIOFailure    = errors.New("storage failure")
)

// StoredFile describes a file accepted by Save.
type StoredFile struct {
	Name string
	Size int64
}

// File is an open stored file. Callers must close Content.
type File struct {
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
	Content     io.ReadSeekCloser
}

// Repository is implemented by every storage backend.
type Repository interface {
	// Save sanitizes rawName and writes content under it, replacing any
	// existing file of the same name.
	Save(ctx context.Context, rawName string, content io.Reader) (StoredFile, error)
	// Files walks the root on every call and yields slash-separated paths
	// relative to it. Order is traversal order, not sorted.
	Files(ctx context.Context) iter.Seq2[string, error]
	// Fetch opens relativePath. Paths that would leave the root fail with
	// ErrAccessDenied.
	Fetch(ctx context.Context, relativePath string) (*File, error)
}

// ListAll collects repo.Files into a slice, stopping at the first error.
func ListAll(ctx context.Context, repo Repository) ([]string, error) {
	var out []string
	for name, err := range repo.Files(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, name)
	}
	return out, nil
}

// cleanRelative turns a client supplied path into a clean slash-separated
// path below the root.
func cleanRelative(p string) (string, error) {
	if strings.ContainsRune(p, 0) {
		return "", ErrAccessDenied
	}
	p = strings.ReplaceAll(p, `\`, "/")
	if strings.HasPrefix(p, "/") || hasVolume(p) {
		return "", ErrAccessDenied
	}

	cleaned := path.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrAccessDenied
	}
	if cleaned == "." || cleaned == "" {
		return "", ErrNotFound
	}
	return cleaned, nil
}

// hasVolume catches Windows drive letters like "C:".
func hasVolume(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func hidden(name string) bool {
	base := path.Base(name)
	return base == ReservedMarker || strings.HasPrefix(base, tempPrefix)
}

// contentTypeFor is empty when the extension is unknown; callers sniff.
func contentTypeFor(name string) string {
	return mime.TypeByExtension(path.Ext(name))
}
