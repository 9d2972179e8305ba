package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// Store is the persistence boundary the engine and anchor layer depend on.
type Store interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	GetByPrefix(prefix string) (map[string][]byte, error)
	PutObject(key string, obj interface{}) error
	PutObjects(objs map[string]interface{}) error
	GetObject(key string, obj interface{}) error

	Close() error
	RunGC() error
}

type DBMetrics struct {
	PutCount    int64
	GetCount    int64
	DeleteCount int64
	Errors      int64
}

// DBStorage is a persistent store backed by BadgerDB.
type DBStorage struct {
	db      *badger.DB
	mu      sync.Mutex
	config  BadgerDBConfig
	metrics DBMetrics
}

func (s *DBStorage) logOperation(op string, key string, err error) {
	if err != nil {
		log.Printf("BadgerDB %s operation failed for key %s: %v", op, key, err)
		atomic.AddInt64(&s.metrics.Errors, 1)
	}
}

// Open opens (or creates) a BadgerDB store under the configured data dir.
func Open(config BadgerDBConfig) (*DBStorage, error) {
	opts := badger.DefaultOptions(filepath.Join(config.DataDir, "badgerdb"))
	if config.DisableLogging {
		opts.Logger = nil
	}
	opts.InMemory = config.InMemory
	opts.SyncWrites = config.SyncWrites
	if config.InMemory {
		opts.Dir = ""
		opts.ValueDir = ""
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %v", err)
	}

	s := &DBStorage{
		db:     db,
		config: config,
	}

	if config.GCInterval > 0 {
		go s.startGCRoutine(time.Duration(config.GCInterval) * time.Second)
	}

	return s, nil
}

func (s *DBStorage) startGCRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if err := s.RunGC(); err != nil && err != badger.ErrNoRewrite {
			log.Printf("BadgerDB GC failed: %v", err)
		}
	}
}

// Close closes the underlying database.
func (s *DBStorage) Close() error {
	return s.db.Close()
}

// RunGC runs value-log garbage collection.
func (s *DBStorage) RunGC() error {
	return s.db.RunValueLogGC(0.5)
}

// Put stores a key-value pair.
func (s *DBStorage) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	atomic.AddInt64(&s.metrics.PutCount, 1)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	s.logOperation("put", key, err)
	return err
}

// Get retrieves the value stored under key. Returns ErrNotFound when absent.
func (s *DBStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	atomic.AddInt64(&s.metrics.GetCount, 1)
	var valCopy []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			valCopy = append([]byte{}, val...)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logOperation("get", key, err)
		return nil, fmt.Errorf("failed to get value: %v", err)
	}

	return valCopy, nil
}

// Delete removes a key-value pair.
func (s *DBStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	atomic.AddInt64(&s.metrics.DeleteCount, 1)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	s.logOperation("delete", key, err)
	return err
}

// GetByPrefix retrieves all key-value pairs with the given prefix.
func (s *DBStorage) GetByPrefix(prefix string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string][]byte)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			k := item.KeyCopy(nil)
			err := item.Value(func(v []byte) error {
				result[string(k)] = append([]byte{}, v...)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get values by prefix: %v", err)
	}

	return result, nil
}

// PutObject serializes and stores an object.
func (s *DBStorage) PutObject(key string, obj interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal object: %v", err)
	}

	return s.Put(key, data)
}

// PutObjects serializes and stores several objects in one write transaction.
// Either every entry is persisted or none is; settlement relies on this to
// keep the two sides of a trade in sync.
func (s *DBStorage) PutObjects(objs map[string]interface{}) error {
	encoded := make(map[string][]byte, len(objs))
	for key, obj := range objs {
		data, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("failed to marshal object for key %s: %v", key, err)
		}
		encoded[key] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	atomic.AddInt64(&s.metrics.PutCount, int64(len(encoded)))
	err := s.db.Update(func(txn *badger.Txn) error {
		for key, data := range encoded {
			if err := txn.Set([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
	s.logOperation("put-batch", fmt.Sprintf("%d keys", len(encoded)), err)
	return err
}

// GetObject retrieves and deserializes an object.
func (s *DBStorage) GetObject(key string, obj interface{}) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, obj); err != nil {
		return fmt.Errorf("failed to unmarshal object: %v", err)
	}

	return nil
}
