package localstore

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// profileKeyPrefix namespaces keys inside the badger store.
const profileKeyPrefix = "profile:"

// Badger is a Backend on an embedded BadgerDB.
type Badger struct {
	db *badger.DB
}

// NewBadger opens (or creates) a badger store in dir.
func NewBadger(dir string) (*Badger, error) {
	if dir == "" {
		return nil, errors.New("badger backend requires a directory")
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	// Profiles are a few KB; the default 1GB value log is wasteful
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for profiles: %w", err)
	}
	return &Badger{db: db}, nil
}

// NewBadgerInMemory opens a non-persistent badger store.
func NewBadgerInMemory() (*Badger, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger db: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Read(key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return out, nil
}

func (b *Badger) Write(key string, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKeyPrefix+key), data)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (b *Badger) Delete(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(profileKeyPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}
