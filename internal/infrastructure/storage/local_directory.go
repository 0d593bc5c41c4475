package storage

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "stenosis-api/pkg/errors"
)

// LocalDirectory перечисляет файлы серий на локальном диске.
// Списки кэшируются до изменения mtime каталога.
type LocalDirectory struct {
	root   string
	logger *slog.Logger

	mu       sync.RWMutex
	listings map[string]listing
}

type listing struct {
	modTime time.Time
	files   []string
}

// NewLocalDirectory создаёт хранилище; пустой root снимает ограничение на каталоги.
func NewLocalDirectory(root string, logger *slog.Logger) *LocalDirectory {
	return &LocalDirectory{
		root:     root,
		logger:   logger,
		listings: make(map[string]listing),
	}
}

// Resolve приводит путь к абсолютному и проверяет, что он внутри root.
// Относительный путь при заданном root отсчитывается от root.
func (d *LocalDirectory) Resolve(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", apperrors.NewValidationError("directory is required")
	}

	path := dir
	if d.root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(d.root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", apperrors.WrapValidationError(err, "invalid directory").WithContext("dir", dir)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if d.root == "" {
		return abs, nil
	}

	root, err := filepath.Abs(d.root)
	if err != nil {
		return "", apperrors.WrapConfigurationError(err, "invalid DICOM root")
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", apperrors.NewValidationError("directory is outside the allowed root").WithContext("dir", dir)
	}
	return abs, nil
}

// List возвращает отсортированные по имени пути файлов с расширением ext.
func (d *LocalDirectory) List(ctx context.Context, dir, ext string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := d.Resolve(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.WrapNotFoundError(err, "directory").WithContext("dir", dir)
		}
		return nil, apperrors.WrapInternalError(err, "failed to stat directory").WithContext("dir", dir)
	}
	if !info.IsDir() {
		return nil, apperrors.NewNotFoundError("directory").WithContext("dir", dir)
	}

	key := abs + "|" + strings.ToLower(ext)
	d.mu.RLock()
	cached, ok := d.listings[key]
	d.mu.RUnlock()
	if ok && cached.modTime.Equal(info.ModTime()) {
		return cached.files, nil
	}

	files, err := collectFiles(abs, ext)
	if err != nil {
		return nil, apperrors.WrapInternalError(err, "failed to list directory").WithContext("dir", dir)
	}

	d.mu.Lock()
	d.listings[key] = listing{modTime: info.ModTime(), files: files}
	d.mu.Unlock()

	d.logger.Debug("Directory listed",
		"dir", abs,
		"files", len(files),
	)
	return files, nil
}

func collectFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if ext != "" && !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
