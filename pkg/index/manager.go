// Package index implements the Index Manager facade: the lifecycle and
// error-handling surface a caller uses to create, open, mutate, and query
// a single block-file-backed B-tree index.
package index

import (
	"errors"
	"fmt"
	"sync"

	"blocktree/pkg/blockfile"
	"blocktree/pkg/btree"
	"blocktree/pkg/cache"
)

// Facade errors. ErrFileExists and ErrNotFound are the same values as
// blockfile's own sentinels. Create and Open wrap them with the path for
// context, so callers match them with errors.Is against either package's
// sentinel.
var (
	ErrNoFileOpen   = errors.New("index: no file open")
	ErrDuplicateKey = errors.New("index: key already exists")
	ErrFileExists   = blockfile.ErrExists
	ErrNotFound     = blockfile.ErrNotFound
)

// Manager owns at most one open index file at a time: all mutation and
// lookup happens on the goroutine that calls into the Manager, guarded
// only so Close can't race an in-flight operation.
type Manager struct {
	mu     sync.Mutex
	file   *blockfile.File
	cache  *cache.Cache
	engine *btree.Engine
}

// New returns a Manager with no file open. Create or Open must be called
// before Insert, Search, or Traverse.
func New() *Manager {
	return &Manager{}
}

// Create makes a new index file at path and opens it. If a file already
// exists at path and overwrite is false, ErrFileExists is returned and any
// previously open file is left untouched.
func (m *Manager) Create(path string, overwrite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := blockfile.Create(path, overwrite)
	if err != nil {
		return fmt.Errorf("index: create %s: %w", path, err)
	}

	m.swap(f)
	return nil
}

// Open opens an existing index file at path, closing any previously open
// file first.
func (m *Manager) Open(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := blockfile.Open(path)
	if err != nil {
		return fmt.Errorf("index: open %s: %w", path, err)
	}

	m.swap(f)
	return nil
}

// swap installs a newly opened file, closing the previous one if present.
// Caller holds m.mu.
func (m *Manager) swap(f *blockfile.File) {
	if m.file != nil {
		m.file.Close()
	}
	m.file = f
	m.cache = cache.New(f)
	m.engine = btree.New(f, m.cache)
}

// Close closes the currently open file, if any. Calling Close with no file
// open is a no-op.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file == nil {
		return nil
	}
	err := m.file.Close()
	m.file, m.cache, m.engine = nil, nil, nil
	return err
}

// Insert adds key/value to the open index. It returns ErrNoFileOpen if no
// file is open, and ErrDuplicateKey if key is already present (the tree is
// left unmodified in that case).
func (m *Manager) Insert(key, value uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine == nil {
		return ErrNoFileOpen
	}
	return m.engine.Insert(key, value, ErrDuplicateKey)
}

// Search looks up key in the open index.
func (m *Manager) Search(key uint64) (value uint64, found bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine == nil {
		return 0, false, ErrNoFileOpen
	}
	return m.engine.Search(key)
}

// Traverse visits every (key, value) pair in ascending key order.
func (m *Manager) Traverse(fn func(key, value uint64) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine == nil {
		return ErrNoFileOpen
	}
	return btree.Traverse(m.engine, fn)
}

// IsOpen reports whether a file is currently open.
func (m *Manager) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.file != nil
}
