package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheFilePath(t *testing.T) {
	s, err := New(t.TempDir(), WithOutputExt("mp4"))
	require.NoError(t, err)

	in := s.CacheFilePath(true)
	out := s.CacheFilePath(false)

	assert.Equal(t, filepath.Join(s.Root(), InputDir), filepath.Dir(in))
	assert.Equal(t, filepath.Join(s.Root(), OutputDir), filepath.Dir(out))
	assert.True(t, strings.HasSuffix(in, RawExt))
	assert.True(t, strings.HasSuffix(out, ".mp4"))
	assert.True(t, s.Contains(in))
	assert.False(t, s.Contains(filepath.Join(os.TempDir(), "elsewhere")))
}

func TestRoot(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.Root())
	assert.DirExists(t, filepath.Join(dir, InputDir))
	assert.DirExists(t, filepath.Join(dir, OutputDir))
	assert.True(t, s.Contains(s.CacheFilePath(true)))
}

func TestCacheFilePathUnique(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		seen  = make(map[string]struct{})
		wg    sync.WaitGroup
		dupes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p := s.CacheFilePath(j%2 == 0)
				mu.Lock()
				if _, ok := seen[p]; ok {
					dupes++
				}
				seen[p] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, dupes)
	assert.Len(t, seen, 800)
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, int64(0), FileSize(filepath.Join(dir, "missing")))
	assert.Equal(t, int64(0), FileSize(dir))

	p := filepath.Join(dir, "five")
	require.NoError(t, os.WriteFile(p, []byte("12345"), 0o600))
	assert.Equal(t, int64(5), FileSize(p))
}

func TestRemoveAndPurge(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	p := s.CacheFilePath(true)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	require.NoError(t, s.Remove(p))
	require.NoError(t, s.Remove(p))
	assert.Error(t, s.Remove(""))

	out := s.CacheFilePath(false)
	require.NoError(t, os.WriteFile(out, []byte("x"), 0o600))
	require.NoError(t, s.Purge())
	assert.Equal(t, int64(0), FileSize(out))

	_, err = os.Stat(filepath.Join(s.Root(), OutputDir))
	assert.NoError(t, err)
}
