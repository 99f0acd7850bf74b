// Package vfs adapts go-billy filesystems to the narrow read surface the
// snapshot middleware pipeline needs. Using billy.Filesystem rather than
// direct os.* calls means the same pipeline runs unmodified against an
// in-memory tree in tests and against a real directory on disk.
package vfs

import (
	"io"
	"os"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// FS is the filesystem surface the snapshot pipeline reads from.
type FS = billy.Filesystem

// NewOS returns an FS rooted at root on the real, on-disk filesystem.
func NewOS(root string) FS {
	return osfs.New(root, osfs.WithBoundOS())
}

// NewMemory returns an empty, in-memory FS, used by tests to build source
// trees without touching disk.
func NewMemory() FS {
	return memfs.New()
}

// ReadFile reads the entire contents of path on fs.
func ReadFile(fs FS, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// WriteFile truncates (or creates) path on fs and writes data to it.
func WriteFile(fs FS, path string, data []byte) error {
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

// Entry describes one child of a directory, sorted by name so that
// directory snapshots are deterministic across platforms.
type Entry struct {
	Name  string
	IsDir bool
}

// ReadDir lists path's children on fs, sorted by name.
func ReadDir(fs FS, path string) ([]Entry, error) {
	infos, err := fs.ReadDir(path)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(infos))
	for i, info := range infos {
		entries[i] = Entry{Name: info.Name(), IsDir: info.IsDir()}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Stat reports whether path exists on fs and, if so, its os.FileInfo.
func Stat(fs FS, path string) (os.FileInfo, bool, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return info, true, nil
}

// Exists reports whether path exists on fs.
func Exists(fs FS, path string) bool {
	_, ok, err := Stat(fs, path)
	return err == nil && ok
}
