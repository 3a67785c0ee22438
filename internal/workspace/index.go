package workspace

import (
	"path/filepath"
	"sync"
)

// dirIndex maps directories to values and answers nearest-ancestor lookups.
type dirIndex[T any] struct {
	mu    sync.RWMutex
	byDir map[string]T
}

func newDirIndex[T any]() *dirIndex[T] {
	return &dirIndex[T]{byDir: make(map[string]T)}
}

func (x *dirIndex[T]) set(dir string, v T) {
	x.mu.Lock()
	x.byDir[filepath.Clean(dir)] = v
	x.mu.Unlock()
}

func (x *dirIndex[T]) delete(dir string) {
	x.mu.Lock()
	delete(x.byDir, filepath.Clean(dir))
	x.mu.Unlock()
}

// nearest returns the value of the closest directory at or above path.
func (x *dirIndex[T]) nearest(path string) (T, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	dir := filepath.Clean(path)
	for {
		if v, ok := x.byDir[dir]; ok {
			return v, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			var zero T
			return zero, false
		}
		dir = parent
	}
}

func (x *dirIndex[T]) len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byDir)
}
