// Package archive reads scripts and assets stored in zip archives. A path
// such as "game.zip/scenes/intro.md" addresses an entry inside an archive.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when the archive has no entry with the requested
// name.
var ErrNotFound = errors.New("entry not found in archive")

// WalkFunc is called by Walk for every matching regular entry. Returning
// an error stops the walk.
type WalkFunc func(archive string, file *zip.File) error

// Walk calls walkFn for every regular entry of archive whose name starts
// with prefix and, when ext is not empty, ends with ext (case insensitive).
// Entries with absolute names or ".." components fail the walk.
func Walk(archive, prefix, ext string, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if ext != "" && !strings.EqualFold(path.Ext(name), ext) {
			continue
		}
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile returns contents of the named entry.
func ReadFile(archive, name string) ([]byte, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	name = path.Clean(strings.TrimPrefix(filepath.ToSlash(name), "/"))
	for _, f := range r.File {
		if f.Name != name || f.FileInfo().IsDir() {
			continue
		}
		return readEntry(f)
	}
	return nil, fmt.Errorf("%s in %s: %w", name, archive, ErrNotFound)
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open zip entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("unable to read zip entry %q: %w", f.Name, err)
	}
	return data, nil
}

// Split looks for the first component of p naming an existing regular
// file with ".zip" extension and returns that file and the remainder of
// the path inside it. It reports false when p does not go through an
// archive.
func Split(p string) (archive, entry string, ok bool) {
	slashed := filepath.ToSlash(p)
	for i := 0; i < len(slashed); {
		j := strings.Index(slashed[i:], "/")
		end := len(slashed)
		if j >= 0 {
			end = i + j
		}
		candidate := slashed[:end]
		if strings.EqualFold(path.Ext(candidate), ".zip") {
			if fi, err := os.Stat(filepath.FromSlash(candidate)); err == nil && fi.Mode().IsRegular() {
				if end >= len(slashed) {
					return filepath.FromSlash(candidate), "", true
				}
				return filepath.FromSlash(candidate), slashed[end+1:], true
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return "", "", false
			}
		}
		if j < 0 {
			break
		}
		i = end + 1
	}
	return "", "", false
}

// isSafePath returns false for entry names that could escape the
// extraction directory: absolute paths and those containing "..".
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
