package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

func TestResolveLiteralPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "trace.0.json", time.Now())

	got, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestResolveNewestByMtime(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFile(t, dir, "trace.0.json", base)
	newest := writeFile(t, dir, "trace.1.json", base.Add(30*time.Minute))
	writeFile(t, dir, "trace.2.json", base.Add(10*time.Minute))

	got, err := Resolve(filepath.Join(dir, "trace.*.json"))
	require.NoError(t, err)
	assert.Equal(t, newest, got)
}

func TestResolveNoMatch(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "trace.*.json"))
	assert.Error(t, err)
}
