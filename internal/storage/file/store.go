// Package file persists the transaction list as a single CSV file. The whole file is
// rewritten on every mutation, through a temporary file renamed into place.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tinoosan/bookkeeper/internal/ledger"
	"github.com/tinoosan/bookkeeper/internal/storage/memory"
)

// Store serves reads from memory and writes every change through to path.
// Idempotency keys live in memory only.
//
// Before every read and write the store checks whether another process replaced the
// file, and reloads it if so. Two processes writing at the same instant are not
// coordinated; the later rename wins.
type Store struct {
	*memory.Store
	path string

	mu sync.Mutex
	// seen is the file as this store last read or wrote it.
	seen os.FileInfo
}

// Open loads path, creating the file with just a header when it does not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	txs, fi, err := readFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := s.write(nil); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("load %s: %w", path, err)
	default:
		s.seen = fi
	}
	s.Store = memory.NewPersistent(txs, s.write)
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

func readFile(path string) ([]ledger.Transaction, os.FileInfo, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer fh.Close()
	fi, err := fh.Stat()
	if err != nil {
		return nil, nil, err
	}
	txs, err := ReadTransactions(fh)
	if err != nil {
		return nil, nil, err
	}
	return txs, fi, nil
}

// write is the memory store's persist hook; callers hold s.mu.
func (s *Store) write(txs []ledger.Transaction) error {
	if err := writeAtomic(s.path, txs); err != nil {
		return err
	}
	fi, err := os.Stat(s.path)
	if err != nil {
		return err
	}
	s.seen = fi
	return nil
}

// refresh reloads the book when the file is no longer the one this store last saw.
// Every write renames a new file into place, so a replaced file has a new identity.
func (s *Store) refresh() error {
	fi, err := os.Stat(s.path)
	if err != nil {
		return err
	}
	if s.seen != nil && os.SameFile(s.seen, fi) && fi.ModTime().Equal(s.seen.ModTime()) && fi.Size() == s.seen.Size() {
		return nil
	}
	txs, fi, err := readFile(s.path)
	if err != nil {
		return fmt.Errorf("reload %s: %w", s.path, err)
	}
	s.Store.Replace(txs)
	s.seen = fi
	return nil
}

// Snapshot implements journal.Repo.
func (s *Store) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return ledger.Snapshot{}, err
	}
	return s.Store.Snapshot(ctx)
}

// GetTransaction implements journal.Repo.
func (s *Store) GetTransaction(ctx context.Context, id string) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return ledger.Transaction{}, err
	}
	return s.Store.GetTransaction(ctx, id)
}

// AppendTransactions implements journal.Writer.
func (s *Store) AppendTransactions(ctx context.Context, txs ...ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return err
	}
	return s.Store.AppendTransactions(ctx, txs...)
}

// DeleteTransaction implements journal.Writer.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return err
	}
	return s.Store.DeleteTransaction(ctx, id)
}

// Ready implements httpapi.ReadyChecker: the file must still be readable.
func (s *Store) Ready(context.Context) error {
	_, err := os.Stat(s.path)
	return err
}

func writeAtomic(path string, txs []ledger.Transaction) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = WriteTransactions(tmp, txs); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
