package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"sjsage522/pagewatch/helpers"
	"sjsage522/pagewatch/internal/page"
	apperrors "sjsage522/pagewatch/pkg/errors"
)

// FileStore keeps state in a plain UTF-8 text file, one record per line
type FileStore struct {
	path string
	kind page.Kind
}

// NewFileStore creates a file-backed store for representations of kind
func NewFileStore(path string, kind page.Kind) *FileStore {
	return &FileStore{path: path, kind: kind}
}

// Path returns the state file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the state file; a missing file yields an empty representation
func (s *FileStore) Load(ctx context.Context) (page.Representation, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return page.FromRecords(s.kind, nil), nil
	}
	if err != nil {
		return page.Representation{}, apperrors.NewState(s.path, "failed to read state file", err)
	}
	return page.FromRecords(s.kind, helpers.SplitLines(string(data))), nil
}

// Save rewrites the whole file through a temporary file and rename, so a
// reader never observes a partial write
func (s *FileStore) Save(ctx context.Context, rep page.Representation) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewState(s.path, "failed to create state directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return apperrors.NewState(s.path, "failed to create temporary state file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	content := strings.Join(rep.Records(), "\n")
	if content != "" {
		content += "\n"
	}

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return apperrors.NewState(s.path, "failed to write state", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperrors.NewState(s.path, "failed to sync state", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewState(s.path, "failed to close state", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return apperrors.NewState(s.path, "failed to set state permissions", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return apperrors.NewState(s.path, "failed to replace state file", err)
	}
	return nil
}

// Close is a no-op for files
func (s *FileStore) Close() error {
	return nil
}
