package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// DiskRepository stores files in a local directory.
type DiskRepository struct {
	root string
}

// NewDiskRepository creates root if needed.
func NewDiskRepository(root string) (*DiskRepository, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload folder: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create upload folder: %w", err)
	}
	return &DiskRepository{root: abs}, nil
}

func (d *DiskRepository) Root() string { return d.root }

func (d *DiskRepository) Save(ctx context.Context, rawName string, content io.Reader) (StoredFile, error) {
	name := SecureFilename(rawName)
	if name == "" {
		return StoredFile{}, ErrInvalidName
	}
	if err := ctx.Err(); err != nil {
		return StoredFile{}, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	tmp, err := os.CreateTemp(d.root, tempPrefix+"*")
	if err != nil {
		return StoredFile{}, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, content)
	if err != nil {
		_ = tmp.Close()
		return StoredFile{}, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return StoredFile{}, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := os.Chmod(tmpName, 0o640); err != nil {
		return StoredFile{}, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := os.Rename(tmpName, filepath.Join(d.root, name)); err != nil {
		return StoredFile{}, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	committed = true

	return StoredFile{Name: name, Size: n}, nil
}

func (d *DiskRepository) Files(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if p == d.root {
				return nil
			}
			if entry.IsDir() {
				if entry.Name() == ReservedMarker {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(d.root, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if hidden(rel) {
				return nil
			}
			if !yield(rel, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", fmt.Errorf("%w: %w", ErrIOFailure, err))
		}
	}
}

// Fetch opens the file through an os.Root, so symlinks pointing out of
// the upload folder are refused as well as ".." paths.
func (d *DiskRepository) Fetch(_ context.Context, relativePath string) (*File, error) {
	rel, err := cleanRelative(relativePath)
	if err != nil {
		return nil, err
	}
	if hidden(rel) {
		return nil, ErrNotFound
	}

	root, err := os.OpenRoot(d.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	defer root.Close()

	f, err := root.Open(filepath.FromSlash(rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrAccessDenied, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, ErrNotFound
	}

	return &File{
		Name:        rel,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: contentTypeFor(rel),
		Content:     f,
	}, nil
}

// Ping checks that the upload folder is still a directory.
func (d *DiskRepository) Ping(context.Context) error {
	info, err := os.Stat(d.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("upload folder %s is not a directory", d.root)
	}
	return nil
}
