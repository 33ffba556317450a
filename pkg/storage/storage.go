// Package storage lays out the application-private cache that holds raw
// captures and compressed outputs.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pion/videorecord/internal/logging"
)

const (
	// InputDir holds raw captures.
	InputDir = "input"
	// OutputDir holds compressed deliverables.
	OutputDir = "output"

	// RawExt is the extension of raw movie files.
	RawExt = ".vrec"

	appDir = "videorecord"
)

var logger = logging.NewLogger("videorecord/storage")

var errEmptyPath = errors.New("storage: empty path")

// Storage is rooted in a single directory. Paths are namespaced per request,
// so concurrent writers never collide.
type Storage struct {
	root      string
	outputExt string
}

// Option configures a Storage.
type Option func(*Storage)

// WithOutputExt sets the extension of output paths, e.g. ".mp4".
func WithOutputExt(ext string) Option {
	return func(s *Storage) {
		if ext != "" && ext[0] != '.' {
			ext = "." + ext
		}
		s.outputExt = ext
	}
}

// New creates both namespaces below dir. An empty dir selects the user's
// cache directory.
func New(dir string, opts ...Option) (*Storage, error) {
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			cache = os.TempDir()
		}
		dir = filepath.Join(cache, appDir)
	}

	s := &Storage{root: dir, outputExt: RawExt}
	for _, o := range opts {
		o(s)
	}

	for _, ns := range []string{InputDir, OutputDir} {
		if err := os.MkdirAll(filepath.Join(dir, ns), 0o700); err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
	}
	logger.Debugf("cache rooted at %s", dir)
	return s, nil
}

// Root returns the cache directory.
func (s *Storage) Root() string {
	return s.root
}

// CacheFilePath returns a fresh path in the input or output namespace. The
// file itself is not created.
func (s *Storage) CacheFilePath(input bool) string {
	ns, ext := OutputDir, s.outputExt
	if input {
		ns, ext = InputDir, RawExt
	}
	name := strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + uuid.NewString() + ext
	return filepath.Join(s.root, ns, name)
}

// Contains reports whether path lives inside the cache.
func (s *Storage) Contains(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

// Remove deletes path. Missing files are not an error.
func (s *Storage) Remove(path string) error {
	if path == "" {
		return errEmptyPath
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Purge deletes every cached file and recreates the empty namespaces.
func (s *Storage) Purge() error {
	for _, ns := range []string{InputDir, OutputDir} {
		dir := filepath.Join(s.root, ns)
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// FileSize returns the size of path in bytes, or 0 when it can't be stat'ed.
// It is meant for display and progress only.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0
	}
	return info.Size()
}
