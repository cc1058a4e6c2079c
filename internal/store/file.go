package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// FileStore keeps one JSON document per market in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file holding market's snapshot.
func (f *FileStore) Path(market instrument.Market) string {
	return filepath.Join(f.dir, fmt.Sprintf("data_%s.json", market))
}

// Load reads the stored snapshot for market.
func (f *FileStore) Load(_ context.Context, market instrument.Market) LoadResult {
	data, err := os.ReadFile(f.Path(market))
	if errors.Is(err, fs.ErrNotExist) {
		return missing()
	}
	if err != nil {
		return unreadable(fmt.Errorf("store: read %s: %w", market, err))
	}
	return decodeResult(data, market)
}

// Save writes snap atomically: the document is written to a temp file in
// the same directory and renamed over the previous one.
func (f *FileStore) Save(_ context.Context, snap instrument.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", snap.Market, err)
	}

	tmp, err := os.CreateTemp(f.dir, fmt.Sprintf("data_%s.*.tmp", snap.Market))
	if err != nil {
		return fmt.Errorf("store: create temp for %s: %w", snap.Market, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s: %w", snap.Market, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", snap.Market, err)
	}
	if err := os.Rename(tmp.Name(), f.Path(snap.Market)); err != nil {
		return fmt.Errorf("store: rename %s: %w", snap.Market, err)
	}
	return nil
}
