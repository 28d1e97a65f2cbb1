package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/servicehub/marketplace-client/internal/core/ports"
)

const fileMode = 0o600

// FileBackend stores the token in a single file. Writes go to a temporary
// file in the same directory and are renamed into place, so a reader sees
// either the old or the new token.
type FileBackend struct {
	path string
}

var _ ports.TokenBackend = (*FileBackend)(nil)

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Load(context.Context) (string, bool, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read token file: %w", err)
	}
	token := string(b)
	return token, token != "", nil
}

func (f *FileBackend) Save(_ context.Context, token string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		return fmt.Errorf("write token file: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

func (f *FileBackend) Delete(context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Ping checks that the token directory is usable.
func (f *FileBackend) Ping(context.Context) error {
	info, err := os.Stat(filepath.Dir(f.path))
	if err != nil {
		return fmt.Errorf("token dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("token dir: %s is not a directory", filepath.Dir(f.path))
	}
	return nil
}
