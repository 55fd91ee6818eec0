package store

import (
	"fmt"

	dbm "github.com/cosmos/cosmos-db"
)

// KVStore is the get/set surface shared by every store in this package.
type KVStore interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// DBStore persists keys in a cosmos-db database.
type DBStore struct {
	db dbm.DB
}

func NewDBStore(db dbm.DB) *DBStore {
	if db == nil {
		panic("store: db is nil")
	}
	return &DBStore{db: db}
}

// NewMemStore returns a DBStore backed by an in-memory database.
func NewMemStore() *DBStore {
	return NewDBStore(dbm.NewMemDB())
}

// Open opens (or creates) the node database under dir.
func Open(backend string, dir string) (dbm.DB, error) {
	if backend == "" {
		backend = string(dbm.GoLevelDBBackend)
	}
	db, err := dbm.NewDB("vaultwars", dbm.BackendType(backend), dir)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", backend, err)
	}
	return db, nil
}

func (s *DBStore) Get(key []byte) ([]byte, error) {
	return s.db.Get(key)
}

func (s *DBStore) Set(key, value []byte) error {
	return s.db.Set(key, value)
}

func (s *DBStore) NewBatch() dbm.Batch {
	return s.db.NewBatch()
}

func (s *DBStore) Close() error {
	return s.db.Close()
}
