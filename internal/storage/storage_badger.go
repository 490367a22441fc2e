package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStorage implements Client on an embedded BadgerDB. Keys follow the
// same <project>/<kind>/<id>.json layout as the object stores.
type BadgerStorage struct {
	blobClient
	db *badger.DB
}

// NewBadgerStorage opens (or creates) a BadgerDB in dir. An empty dir
// opens an in-memory database.
func NewBadgerStorage(dir string) (*BadgerStorage, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	s := &BadgerStorage{db: db}
	s.blobClient = blobClient{store: s}
	return s, nil
}

// Close releases the database. The storage must not be used afterwards.
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

func (s *BadgerStorage) put(_ context.Context, b blob, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(b.key()), data)
	})
}

func (s *BadgerStorage) get(_ context.Context, b blob) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(b.key()))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%s %s: %w", b.kind, b.id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %s: %w", b.key(), err)
	}
	return data, nil
}
