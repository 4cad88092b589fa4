package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/doeshing/shlaunch/internal/domain"
	"github.com/doeshing/shlaunch/internal/ports"
)

// FileStore keeps one JSON file per key under a directory.
// Writes go to a temp file first and are renamed into place; writers hold
// an advisory lock on a sibling <key>.lock file.
type FileStore struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a store rooted at dir on the OS filesystem.
func NewFileStore(dir string) *FileStore {
	return NewFileStoreFs(afero.NewOsFs(), dir)
}

// NewFileStoreFs creates a store on an arbitrary afero filesystem.
func NewFileStoreFs(fsys afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fsys, dir: dir}
}

func (s *FileStore) pathFor(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get implements ports.KeyValueStore.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, s.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Put implements ports.KeyValueStore.
func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	unlock, err := s.lock(key)
	if err != nil {
		return err
	}
	defer unlock()
	return s.write(key, value)
}

// Update implements ports.KeyValueStore. The read-modify-write runs under
// an exclusive lock on <key>.lock, so concurrent processes serialise.
func (s *FileStore) Update(_ context.Context, key string, fn func([]byte) ([]byte, error)) error {
	if err := validateKey(key); err != nil {
		return err
	}
	unlock, err := s.lock(key)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := afero.ReadFile(s.fs, s.pathFor(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", key, err)
		}
		current = nil
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.write(key, next)
}

// Delete implements ports.KeyValueStore. Deleting a missing key is not an error.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	unlock, err := s.lock(key)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.fs.Remove(s.pathFor(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// lock serialises writers of key: s.mu within the process and an advisory
// lock on the key's lock file across processes. Filesystems that do not
// hand out OS files (afero.MemMapFs) only get the in-process lock.
func (s *FileStore) lock(key string) (func(), error) {
	s.mu.Lock()
	if err := s.fs.MkdirAll(s.dir, domain.DirectoryPermissions); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("create directory: %w", err)
	}
	f, err := s.fs.OpenFile(filepath.Join(s.dir, key+".lock"), os.O_CREATE|os.O_RDWR, domain.SecureFilePermissions)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	osFile, ok := f.(*os.File)
	if ok {
		if err := lockFile(osFile); err != nil {
			_ = f.Close()
			s.mu.Unlock()
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
	}
	return func() {
		if ok {
			_ = unlockFile(osFile)
		}
		_ = f.Close()
		s.mu.Unlock()
	}, nil
}

func (s *FileStore) write(key string, value []byte) error {
	path := s.pathFor(key)
	tmpPath := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, value, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		_ = s.fs.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// Location returns the backing directory.
func (s *FileStore) Location() string {
	return s.dir
}

var _ ports.KeyValueStore = (*FileStore)(nil)
