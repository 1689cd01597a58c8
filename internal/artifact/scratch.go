package artifact

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	uploadsDir      = "uploads"
	processedDir    = "processed"
	processedPrefix = "processed_"
)

// Scratch is the process-local directory holding request scoped files.
type Scratch struct {
	root      string
	uploads   string
	processed string
	logger    *slog.Logger
}

func NewScratch(root string, logger *slog.Logger) (*Scratch, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if root == "" {
		root = filepath.Join(os.TempDir(), "cascade-detect")
	}

	s := &Scratch{
		root:      root,
		uploads:   filepath.Join(root, uploadsDir),
		processed: filepath.Join(root, processedDir),
		logger:    logger.With("component", "scratch"),
	}
	for _, dir := range []string{s.uploads, s.processed} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create scratch dir %s: %w", dir, err)
		}
	}
	return s, nil
}

func (s *Scratch) Root() string {
	return s.root
}

// UniqueName returns "<uuid>_<secure filename>".
func (s *Scratch) UniqueName(filename string) string {
	return uuid.NewString() + "_" + SecureFilename(filename)
}

func (s *Scratch) UploadPath(unique string) string {
	return filepath.Join(s.uploads, unique)
}

// ProcessedPath names the output for unique. A non-empty ext replaces the
// upload's own extension.
func (s *Scratch) ProcessedPath(unique, ext string) string {
	name := unique
	if ext != "" {
		name = strings.TrimSuffix(unique, filepath.Ext(unique)) + ext
	}
	return filepath.Join(s.processed, processedPrefix+name)
}

func (s *Scratch) SaveUpload(unique string, r io.Reader) (string, error) {
	path := s.UploadPath(unique)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}

// Writable probes the scratch root by creating and removing a file.
func (s *Scratch) Writable() error {
	f, err := os.CreateTemp(s.root, ".probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// Remove deletes path. A file that is already gone is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
