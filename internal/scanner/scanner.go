// Package scanner discovers extractable files in a repository directory.
// It skips hidden directories (.git and friends), filters by supported
// extension, and enforces a file size cap.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultMaxFileSize is the file size cap applied when none is configured.
const DefaultMaxFileSize = 10 * 1024 * 1024

// FileInfo contains metadata about a discovered file.
type FileInfo struct {
	Path    string    // Relative to the repository root
	AbsPath string    // Absolute path
	Size    int64     // File size in bytes
	ModTime time.Time // Last modification time
}

// Options configures a scan.
type Options struct {
	// RootDir is the repository root directory to scan.
	RootDir string
	// Extensions limits discovery to these lowercased extensions
	// (including the dot). Empty means all files.
	Extensions []string
	// MaxFileSize is the maximum file size in bytes (0 = DefaultMaxFileSize).
	MaxFileSize int64
}

// Scan walks the repository rooted at opts.RootDir and returns the
// extractable files in deterministic (sorted) order.
func Scan(ctx context.Context, opts Options) ([]FileInfo, error) {
	root := opts.RootDir
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", absRoot)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	extSet := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extSet[strings.ToLower(ext)] = true
	}

	var files []FileInfo
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := d.Name()
		if d.IsDir() {
			// Skip hidden directories, .git included.
			if path != absRoot && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if len(extSet) > 0 && !extSet[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil // File vanished mid-walk; skip it.
		}
		if fi.Size() > maxSize {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{
			Path:    filepath.ToSlash(rel),
			AbsPath: path,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
