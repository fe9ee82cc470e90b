package invoice

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileStore writes rendered invoices into a directory.
type FileStore struct {
	dir      string
	renderer Renderer
}

func NewFileStore(dir string, renderer Renderer) *FileStore {
	return &FileStore{dir: dir, renderer: renderer}
}

// Save renders inv to <dir>/Invoice_<orderID>.pdf, replacing any earlier
// copy, and returns the path.
func (s *FileStore) Save(inv *Invoice) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create invoice dir: %w", err)
	}

	path := filepath.Join(s.dir, FileName(inv.OrderID))
	tmp, err := os.CreateTemp(s.dir, ".invoice-*")
	if err != nil {
		return "", fmt.Errorf("create invoice file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.renderer.Render(tmp, inv); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close invoice file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move invoice file: %w", err)
	}
	return path, nil
}
