package journal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tebello-m/tenderledger/internal/ledger"
)

// FileJournal stores the transaction sequence as a single JSON array file.
//
// Save writes a temporary file in the target directory and renames it over
// the destination, so readers never observe a torn write.
type FileJournal struct {
	path string
}

// NewFileJournal creates a journal backed by the file at path. The file is
// not required to exist; the parent directory is.
func NewFileJournal(path string) *FileJournal {
	return &FileJournal{path: path}
}

// Path returns the backing file path.
func (j *FileJournal) Path() string { return j.path }

// Load implements Journal.
func (j *FileJournal) Load(ctx context.Context) ([]ledger.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []ledger.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load journal %s: %w", j.path, err)
	}
	txs, err := ledger.UnmarshalTransactions(data)
	if err != nil {
		return nil, fmt.Errorf("load journal %s: %w", j.path, err)
	}
	return txs, nil
}

// Save implements Journal.
func (j *FileJournal) Save(ctx context.Context, txs []ledger.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := ledger.MarshalTransactions(txs)
	if err != nil {
		return fmt.Errorf("save journal %s: %w", j.path, err)
	}

	dir := filepath.Dir(j.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(j.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("save journal %s: %w", j.path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("save journal %s: %w", j.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("save journal %s: %w", j.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save journal %s: %w", j.path, err)
	}
	if err := os.Rename(tmpPath, j.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save journal %s: %w", j.path, err)
	}
	return nil
}

// Close implements Journal. A file journal holds no open handle.
func (j *FileJournal) Close() error { return nil }
