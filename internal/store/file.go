package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend stores each document as <dir>/<name>.json.
type FileBackend struct{ dir string }

// OpenFiles prepares dir (creating it if needed) and returns a file backend.
func OpenFiles(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

// Read returns the raw document or ErrNotFound.
func (b *FileBackend) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(b.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteAll writes documents one by one in name order. Each file is replaced
// atomically via rename; the batch as a whole is not.
func (b *FileBackend) WriteAll(ctx context.Context, docs map[string][]byte) error {
	var written []string
	for _, name := range sortedNames(docs) {
		if err := ctx.Err(); err != nil {
			return b.partial(written, name, err)
		}
		if err := b.writeFile(name, docs[name]); err != nil {
			return b.partial(written, name, err)
		}
		written = append(written, name)
	}
	return nil
}

func (b *FileBackend) partial(written []string, name string, err error) error {
	if len(written) == 0 {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return &PartialWriteError{Written: written, Failed: name, Err: err}
}

func (b *FileBackend) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.path(name))
}

// Close is a no-op for files.
func (b *FileBackend) Close() error { return nil }
