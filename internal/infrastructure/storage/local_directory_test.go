package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "stenosis-api/pkg/errors"
	"stenosis-api/pkg/logger"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestLocalDirectory_ListSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.dcm", "a.dcm", "c.DCM", "notes.txt"} {
		touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "z.dcm"), 0o755))

	d := NewLocalDirectory("", logger.Discard())
	files, err := d.List(context.Background(), dir, ".dcm")
	require.NoError(t, err)
	require.Len(t, files, 3)
	require.Equal(t, "a.dcm", filepath.Base(files[0]))
	require.Equal(t, "b.dcm", filepath.Base(files[1]))
	require.Equal(t, "c.DCM", filepath.Base(files[2]))
}

func TestLocalDirectory_Missing(t *testing.T) {
	d := NewLocalDirectory("", logger.Discard())
	_, err := d.List(context.Background(), filepath.Join(t.TempDir(), "absent"), ".dcm")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}

func TestLocalDirectory_FileIsNotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.dcm")
	touch(t, path)

	_, err := NewLocalDirectory("", logger.Discard()).List(context.Background(), path, ".dcm")
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}

func TestLocalDirectory_RootRestriction(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "study")
	require.NoError(t, os.Mkdir(inside, 0o755))

	d := NewLocalDirectory(root, logger.Discard())

	_, err := d.Resolve(inside)
	require.NoError(t, err)

	_, err = d.Resolve(filepath.Join(inside, "..", ".."))
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	_, err = d.Resolve(t.TempDir())
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
}

func TestLocalDirectory_RelativeToRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "patient01"), 0o755))
	touch(t, filepath.Join(root, "patient01", "slice_000.dcm"))

	d := NewLocalDirectory(root, logger.Discard())

	abs, err := d.Resolve("patient01")
	require.NoError(t, err)
	require.Equal(t, "patient01", filepath.Base(abs))

	files, err := d.List(context.Background(), "patient01", ".dcm")
	require.NoError(t, err)
	require.Len(t, files, 1)

	_, err = d.Resolve(filepath.Join("..", "elsewhere"))
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
}

func TestLocalDirectory_CacheRefreshesOnChange(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "1.dcm"))

	d := NewLocalDirectory("", logger.Discard())
	files, err := d.List(context.Background(), dir, ".dcm")
	require.NoError(t, err)
	require.Len(t, files, 1)

	touch(t, filepath.Join(dir, "2.dcm"))
	// mtime каталога может совпасть в пределах разрешения ФС
	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(dir, info.ModTime(), info.ModTime().Add(1e9)))

	files, err = d.List(context.Background(), dir, ".dcm")
	require.NoError(t, err)
	require.Len(t, files, 2)
}

func TestLocalDirectory_EmptyPath(t *testing.T) {
	_, err := NewLocalDirectory("", logger.Discard()).Resolve("  ")
	require.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
}
