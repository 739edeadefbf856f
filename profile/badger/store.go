// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package badger implements profile.Registry on BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/poiesic/recall/profile"
)

const userCollectionsPrefix = "usrcol"

// maxConflictRetries bounds the read-modify-write retry loop when two
// ingestions for the same user commit concurrently.
const maxConflictRetries = 8

// Store implements profile.Registry backed by a BadgerDB instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ profile.Registry = (*Store)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a registry at the specified path.
// Creates the directory if it doesn't exist.
func Open(filePath string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "profile"),
	}, nil
}

// Close closes the underlying BadgerDB database.
func (s *Store) Close() error {
	return s.db.Close()
}

func makeUserKey(userID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", userCollectionsPrefix, userID))
}

// AppendCollection records a collection as owned by a user. The append is
// a read-modify-write transaction; conflicts from concurrent ingestions
// are retried.
func (s *Store) AppendCollection(ctx context.Context, userID, collection string) error {
	if s.db.IsClosed() {
		return profile.ErrRegistryClosed
	}
	if strings.TrimSpace(collection) == "" {
		return profile.ErrEmptyCollection
	}

	key := makeUserKey(userID)

	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = s.db.Update(func(tx *badger.Txn) error {
			collections, err := readCollections(tx, key)
			if err != nil {
				return err
			}
			if slices.Contains(collections, collection) {
				return nil
			}
			collections = append(collections, collection)
			return tx.Set(key, profile.MarshalCollections(collections))
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Debug("append conflict, retrying", "user", userID, "attempt", attempt+1)
	}
	return err
}

// Collections returns the collections owned by a user in ingestion order.
func (s *Store) Collections(ctx context.Context, userID string) ([]string, error) {
	if s.db.IsClosed() {
		return nil, profile.ErrRegistryClosed
	}

	var collections []string
	err := s.db.View(func(tx *badger.Txn) error {
		var err error
		collections, err = readCollections(tx, makeUserKey(userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return collections, nil
}

// Users returns the IDs of all users with at least one collection.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	if s.db.IsClosed() {
		return nil, profile.ErrRegistryClosed
	}

	prefix := []byte(userCollectionsPrefix + ":")
	var users []string
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			users = append(users, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// readCollections loads and decodes a user's collection list inside tx.
// A missing key means the user has no collections yet.
func readCollections(tx *badger.Txn, key []byte) ([]string, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var collections []string
	err = item.Value(func(val []byte) error {
		collections, err = profile.UnmarshalCollections(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return collections, nil
}
