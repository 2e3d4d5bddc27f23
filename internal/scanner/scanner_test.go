package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScan_FiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b/second.md", "two")
	writeFile(t, root, "a/first.md", "one")
	writeFile(t, root, "a/skipped.txt", "wrong extension")
	writeFile(t, root, ".git/config", "hidden dir")
	writeFile(t, root, ".hidden/notes.md", "hidden dir too")

	files, err := Scan(context.Background(), Options{
		RootDir:    root,
		Extensions: []string{".md"},
	})
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "a/first.md", files[0].Path)
	assert.Equal(t, "b/second.md", files[1].Path)
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f.AbsPath))
	}
}

func TestScan_SizeCap(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.md", "ok")
	writeFile(t, root, "big.md", strings.Repeat("x", 100))

	files, err := Scan(context.Background(), Options{
		RootDir:     root,
		Extensions:  []string{".md"},
		MaxFileSize: 50,
	})
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "small.md", files[0].Path)
}

func TestScan_NoExtensionsMeansAllFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "one")
	writeFile(t, root, "b.txt", "two")

	files, err := Scan(context.Background(), Options{RootDir: root})
	require.NoError(t, err)

	assert.Len(t, files, 2)
}

func TestScan_MissingRootFails(t *testing.T) {
	_, err := Scan(context.Background(), Options{RootDir: filepath.Join(t.TempDir(), "nope")})

	require.Error(t, err)
}

func TestScan_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "one")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, Options{RootDir: root})

	require.ErrorIs(t, err, context.Canceled)
}
