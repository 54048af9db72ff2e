package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"
	bolt "go.etcd.io/bbolt"
)

const (
	boltFile   = "wprefs.db"
	boltBucket = "records"
)

// Bolt keeps every record in a single bbolt bucket.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens (or creates) wprefs.db in dir.
func NewBolt(dir string) (*Bolt, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, oops.In("store").With("path", dir).Wrapf(err, "creating store directory")
	}

	path := filepath.Join(dir, boltFile)
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		if err == bolt.ErrTimeout {
			return nil, oops.In("store").With("path", path).Wrapf(err, "%s is in use by another process", boltFile)
		}
		return nil, oops.In("store").With("path", path).Wrapf(err, "opening %s", boltFile)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, oops.In("store").Wrapf(err, "creating bucket %s", boltBucket)
	}

	return &Bolt{db: db}, nil
}

// Get reads the JSON document stored under key into v.
func (b *Bolt) Get(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(boltBucket)).Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}
		// raw is only valid for the life of the transaction.
		data = append([]byte(nil), raw...)
		return nil
	})
	if err != nil {
		if err == ErrNotFound {
			return ErrNotFound
		}
		return oops.In("store").With("key", key).Wrapf(err, "reading record")
	}

	if err := json.Unmarshal(data, v); err != nil {
		return oops.In("store").With("key", key).Wrapf(err, "decoding record")
	}
	return nil
}

// Set overwrites the record stored under key.
func (b *Bolt) Set(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return oops.In("store").With("key", key).Wrapf(err, "encoding value")
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(key), data)
	})
	if err != nil {
		return oops.In("store").With("key", key).Wrapf(err, "writing record")
	}
	return nil
}

// Delete removes the record stored under key.
func (b *Bolt) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucket))
		if bucket.Get([]byte(key)) == nil {
			return ErrNotFound
		}
		return bucket.Delete([]byte(key))
	})
	if err != nil {
		if err == ErrNotFound {
			return ErrNotFound
		}
		return oops.In("store").With("key", key).Wrapf(err, "removing record")
	}
	return nil
}

// Close releases the database file lock.
func (b *Bolt) Close() error {
	return b.db.Close()
}
