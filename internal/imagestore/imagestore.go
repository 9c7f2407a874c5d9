// Package imagestore validates, stores and removes uploaded entry images
// under a single flat asset directory.
package imagestore

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// safeFilenamePattern defines the acceptable characters for stored filenames
var safeFilenamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// unsafeNameChars matches everything that may not appear in the entry-name
// part of a generated filename.
var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-]+`)

// ErrUploadRejected marks uploads that fail the size or type constraint.
// The caller must reject these before any entry row is written.
type ErrUploadRejected struct {
	Reason string
}

func (e *ErrUploadRejected) Error() string {
	return "upload rejected: " + e.Reason
}

// Store manages image assets rooted at a validated directory.
type Store struct {
	root          string
	maxUploadSize int64
	logger        *slog.Logger
}

// New validates the asset directory, creating it when absent, and returns a
// store rooted there.
func New(root string, maxUploadSize int64, logger *slog.Logger) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("image asset path must not be empty")
	}

	if !filepath.IsAbs(root) {
		workDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory to resolve relative asset path: %w", err)
		}
		root = filepath.Join(workDir, root)
	}

	fi, err := os.Stat(root)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error checking image asset path %q: %w", root, err)
		}
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create image asset directory %q: %w", root, err)
		}
		fi, err = os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("error checking newly created image asset path %q: %w", root, err)
		}
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("image asset path is not a directory: %q", root)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		root:          root,
		maxUploadSize: maxUploadSize,
		logger:        logger.With("service", "imagestore"),
	}, nil
}

// Root returns the absolute asset directory.
func (s *Store) Root() string {
	return s.root
}

// Filename composes the stored name for an upload: millisecond timestamp,
// fixed prefix, sanitized entry name and the acting user's id.
func (s *Store) Filename(entryName string, userID uint) string {
	sanitized := unsafeNameChars.ReplaceAllString(entryName, "_")
	return fmt.Sprintf("%d_pokemon_%s_%d.jpg", time.Now().UnixMilli(), sanitized, userID)
}

// Validate checks the upload constraints without touching the filesystem.
// It must be called before any entry row is written.
func (s *Store) Validate(file *multipart.FileHeader) error {
	if file == nil {
		return &ErrUploadRejected{Reason: "image file is required"}
	}
	if file.Size > s.maxUploadSize {
		return &ErrUploadRejected{Reason: fmt.Sprintf("file exceeds maximum size of %d bytes", s.maxUploadSize)}
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return &ErrUploadRejected{Reason: fmt.Sprintf("unsupported content type %q", contentType)}
	}
	return nil
}

// Save validates the upload and moves it into the asset directory under a
// generated name. An existing file under the same name is overwritten.
func (s *Store) Save(file *multipart.FileHeader, entryName string, userID uint) (string, error) {
	if err := s.Validate(file); err != nil {
		return "", err
	}

	filename := s.Filename(entryName, userID)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("opening uploaded file: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(filepath.Join(s.root, filename))
	if err != nil {
		return "", fmt.Errorf("creating image file %q: %w", filename, err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("writing image file %q: %w", filename, err)
	}

	s.logger.Debug("Stored image", "filename", filename)
	return filename, nil
}

// Path validates the filename and returns the absolute path inside the
// asset directory, rejecting traversal attempts.
func (s *Store) Path(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("empty filename")
	}
	if !safeFilenamePattern.MatchString(filename) {
		return "", fmt.Errorf("invalid filename characters")
	}

	filename = filepath.Base(filename)
	fullPath := filepath.Join(s.root, filename)

	if !strings.HasPrefix(fullPath, s.root) {
		return "", fmt.Errorf("path traversal attempt detected")
	}

	return fullPath, nil
}

// Exists reports whether the named image is present in the asset directory.
func (s *Store) Exists(filename string) bool {
	fullPath, err := s.Path(filename)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}

// Remove deletes a stored image. Failures are logged, never returned, the
// primary entity mutation must not depend on the removal outcome. Callers
// on the request path run this in a goroutine.
func (s *Store) Remove(filename string) {
	if filename == "" {
		return
	}

	fullPath, err := s.Path(filename)
	if err != nil {
		s.logger.Warn("Refusing to remove image with invalid name", "filename", filename, "error", err)
		return
	}

	if err := os.Remove(fullPath); err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove stale image", "filename", filename, "error", err)
		}
		return
	}

	s.logger.Debug("Removed stale image", "filename", filename)
}
