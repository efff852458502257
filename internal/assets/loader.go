package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gocv.io/x/gocv"
)

var (
	errUndecodable = errors.New("unsupported or corrupt image")
	errClosed      = errors.New("asset table closed")
)

// FileLoader reads images from a directory.
type FileLoader struct {
	Dir string
}

// Load decodes the named file, keeping any alpha channel.
func (l FileLoader) Load(name string) (gocv.Mat, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.Dir, name)
	}

	if _, err := os.Stat(path); err != nil {
		return gocv.Mat{}, err
	}

	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, fmt.Errorf("decode %s: %w", path, errUndecodable)
	}
	return mat, nil
}

// Lazy loads a Table on first use and hands out the same table afterwards.
type Lazy struct {
	loader Loader
	names  []string
	size   int

	once sync.Once

	mu    sync.Mutex
	table *Table
	err   error
}

// NewLazy prepares a table that is loaded on the first call to Table.
func NewLazy(l Loader, names []string, size int) *Lazy {
	return &Lazy{
		loader: l,
		names:  append([]string(nil), names...),
		size:   size,
	}
}

// Table loads the table once. A failed load is not retried, and a closed Lazy
// keeps failing.
func (z *Lazy) Table() (*Table, error) {
	z.once.Do(func() {
		table, err := Load(z.loader, z.names, z.size)
		z.mu.Lock()
		z.table, z.err = table, err
		z.mu.Unlock()
	})

	z.mu.Lock()
	defer z.mu.Unlock()
	return z.table, z.err
}

// Close releases the table if it was loaded. A Lazy closed before first use
// never loads.
func (z *Lazy) Close() error {
	z.once.Do(func() {})

	z.mu.Lock()
	table := z.table
	z.table = nil
	z.err = errClosed
	z.mu.Unlock()

	if table == nil {
		return nil
	}
	return table.Close()
}
