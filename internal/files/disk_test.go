package files

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDisk(t *testing.T) *DiskRepository {
	t.Helper()
	repo, err := NewDiskRepository(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return repo
}

func readAll(t *testing.T, f *File) []byte {
	t.Helper()
	defer f.Content.Close()
	b, err := io.ReadAll(f.Content)
	require.NoError(t, err)
	return b
}

func TestDisk_SaveFetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newDisk(t)
	payload := []byte("%PDF-1.4 quarterly numbers")

	stored, err := repo.Save(ctx, "report.pdf", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, StoredFile{Name: "report.pdf", Size: int64(len(payload))}, stored)

	f, err := repo.Fetch(ctx, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.Equal(t, int64(len(payload)), f.Size)
	assert.Equal(t, payload, readAll(t, f))
}

func TestDisk_SaveSanitizesAndOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := newDisk(t)

	stored, err := repo.Save(ctx, "../../etc/passwd", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, "etc_passwd", stored.Name)
	assert.FileExists(t, filepath.Join(repo.Root(), "etc_passwd"))

	_, err = repo.Save(ctx, "etc_passwd", strings.NewReader("second"))
	require.NoError(t, err)

	f, err := repo.Fetch(ctx, "etc_passwd")
	require.NoError(t, err)
	assert.Equal(t, "second", string(readAll(t, f)))

	names, err := ListAll(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, []string{"etc_passwd"}, names, "no temp files may be left behind")
}

func TestDisk_SaveInvalidName(t *testing.T) {
	repo := newDisk(t)
	_, err := repo.Save(context.Background(), "../..", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)

	names, err := ListAll(context.Background(), repo)
	require.NoError(t, err)
	assert.Empty(t, names)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

func TestDisk_SaveIOFailure(t *testing.T) {
	repo := newDisk(t)
	_, err := repo.Save(context.Background(), "broken.bin", failingReader{})
	assert.ErrorIs(t, err, ErrIOFailure)

	names, err := ListAll(context.Background(), repo)
	require.NoError(t, err)
	assert.Empty(t, names, "a failed save must not leave a partial file")
}

func TestDisk_FilesSkipsMarkerAndRecurses(t *testing.T) {
	ctx := context.Background()
	repo := newDisk(t)
	root := repo.Root()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "2024", "q1"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ReservedMarker), 0o750))
	for _, p := range []string{
		"a.txt",
		ReservedMarker + "/inside.txt",
		"2024/q1/summary.csv",
		"2024/" + ReservedMarker,
		ReservedMarker + "x",
		tempPrefix + "123",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, filepath.FromSlash(p)), []byte("x"), 0o640))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, ReservedMarker+"-not"), []byte("x"), 0o640))

	names, err := ListAll(ctx, repo)
	require.NoError(t, err)
	slices.Sort(names)
	assert.Equal(t, []string{ReservedMarker + "-not", ReservedMarker + "x", "2024/q1/summary.csv", "a.txt"}, names)

	// Restartable: a second walk sees new state.
	require.NoError(t, os.Remove(filepath.Join(root, "a.txt")))
	names, err = ListAll(ctx, repo)
	require.NoError(t, err)
	assert.NotContains(t, names, "a.txt")
}

func TestDisk_FilesEarlyBreak(t *testing.T) {
	ctx := context.Background()
	repo := newDisk(t)
	for _, n := range []string{"a", "b", "c"} {
		_, err := repo.Save(ctx, n, strings.NewReader(n))
		require.NoError(t, err)
	}

	count := 0
	for _, err := range repo.Files(ctx) {
		require.NoError(t, err)
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestDisk_FilesMissingRoot(t *testing.T) {
	repo := newDisk(t)
	require.NoError(t, os.RemoveAll(repo.Root()))

	_, err := ListAll(context.Background(), repo)
	assert.ErrorIs(t, err, ErrIOFailure)
}

func TestDisk_FetchGuards(t *testing.T) {
	ctx := context.Background()
	repo := newDisk(t)
	outside := filepath.Join(filepath.Dir(repo.Root()), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("top secret"), 0o640))

	_, err := repo.Fetch(ctx, "../secret.txt")
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = repo.Fetch(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = repo.Fetch(ctx, outside)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = repo.Fetch(ctx, "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Fetch(ctx, ReservedMarker)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.Mkdir(filepath.Join(repo.Root(), "dir"), 0o750))
	_, err = repo.Fetch(ctx, "dir")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDisk_FetchRefusesEscapingSymlink(t *testing.T) {
	repo := newDisk(t)
	outside := filepath.Join(filepath.Dir(repo.Root()), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("top secret"), 0o640))
	if err := os.Symlink(outside, filepath.Join(repo.Root(), "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := repo.Fetch(context.Background(), "link.txt")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestDisk_Ping(t *testing.T) {
	repo := newDisk(t)
	assert.NoError(t, repo.Ping(context.Background()))

	require.NoError(t, os.RemoveAll(repo.Root()))
	assert.Error(t, repo.Ping(context.Background()))
}
