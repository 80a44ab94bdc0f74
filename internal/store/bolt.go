package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/markusressel/growctl/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketStates = "states"
)

// BoltStore persists all states in a local bbolt database
type BoltStore struct {
	dbPath   string
	db       *bolt.DB
	notifier *notifier
}

type boltEntry struct {
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBoltStore(dbPath string) (*BoltStore, error) {
	// get parent path of dbPath
	parentDir := filepath.Dir(dbPath)
	_, err := os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return nil, err
		}
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketStates))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{
		dbPath:   dbPath,
		db:       db,
		notifier: newNotifier(),
	}, nil
}

func (s *BoltStore) Read(_ context.Context, id string) (State, error) {
	var entry boltEntry
	found := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketStates))
		v := b.Get([]byte(id))
		if v == nil {
			return nil
		}

		err := json.Unmarshal(v, &entry)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved state for %s: %v", id, err)
			err := b.Delete([]byte(id))
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", id, err)
			}
			return nil
		}
		found = true
		return nil
	})
	if err != nil {
		return State{}, err
	}
	if !found {
		return State{}, ErrNotFound
	}

	return State{
		Id:        id,
		Value:     Normalize(entry.Value),
		Timestamp: entry.Timestamp,
	}, nil
}

func (s *BoltStore) Write(_ context.Context, id string, value any) error {
	state := State{
		Id:        id,
		Value:     Normalize(value),
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(boltEntry{Value: state.Value, Timestamp: state.Timestamp})
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketStates))
		return b.Put([]byte(id), data)
	})
	if err != nil {
		return err
	}

	s.notifier.notify(state)
	return nil
}

func (s *BoltStore) Subscribe(ctx context.Context, id string) (<-chan State, error) {
	return s.notifier.subscribe(ctx, id), nil
}

func (s *BoltStore) Close() error {
	s.notifier.close()
	return s.db.Close()
}
