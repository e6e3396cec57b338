// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package combined

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/covid19db/internal/logging"
)

const (
	runKeyPrefix = "run:"
	lastRunKey   = "run:last"
)

// Ledger records the outcome of each load.
type Ledger interface {
	// Record stores stats for a finished run.
	Record(ctx context.Context, stats *LoadStats) error

	// Last returns the most recently recorded run, or nil if none.
	Last(ctx context.Context) (*LoadStats, error)

	// History returns up to limit runs, newest first. limit <= 0 means all.
	History(ctx context.Context, limit int) ([]LoadStats, error)
}

// runKey orders runs by start time; the run ID disambiguates equal starts.
func runKey(stats *LoadStats) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", runKeyPrefix, stats.StartTime.UnixNano(), stats.RunID))
}

// BadgerLedger implements Ledger on BadgerDB.
type BadgerLedger struct {
	db *badger.DB
}

// OpenBadgerLedger opens (creating if needed) a ledger database in dir.
func OpenBadgerLedger(dir string) (*BadgerLedger, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	opts := badger.DefaultOptions(dir).
		WithLogger(logging.NewBadgerLogger()).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &BadgerLedger{db: db}, nil
}

// NewBadgerLedger wraps an already open BadgerDB instance.
func NewBadgerLedger(db *badger.DB) *BadgerLedger {
	return &BadgerLedger{db: db}
}

// Close closes the underlying database.
func (l *BadgerLedger) Close() error {
	return l.db.Close()
}

// Record stores stats under its run key and points run:last at it.
func (l *BadgerLedger) Record(_ context.Context, stats *LoadStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	key := runKey(stats)
	return l.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set([]byte(lastRunKey), key)
	})
}

// Last returns the run run:last points to, or nil, nil when empty.
func (l *BadgerLedger) Last(_ context.Context) (*LoadStats, error) {
	var stats *LoadStats

	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(lastRunKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		runItem, err := txn.Get(key)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		stats = &LoadStats{}
		return runItem.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load last run: %w", err)
	}
	return stats, nil
}

// History iterates run keys in reverse order.
func (l *BadgerLedger) History(_ context.Context, limit int) ([]LoadStats, error) {
	var runs []LoadStats

	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the largest key under the prefix.
		seek := append([]byte(runKeyPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			if string(item.Key()) == lastRunKey {
				continue
			}
			var stats LoadStats
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stats)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			runs = append(runs, stats)
			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return runs, nil
}

// InMemoryLedger implements Ledger in memory.
type InMemoryLedger struct {
	mu   sync.Mutex
	runs []LoadStats
}

// NewInMemoryLedger creates an empty in-memory ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{}
}

// Record stores a copy of stats.
func (l *InMemoryLedger) Record(_ context.Context, stats *LoadStats) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, *stats)
	return nil
}

// Last returns a copy of the most recently recorded run.
func (l *InMemoryLedger) Last(_ context.Context) (*LoadStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.runs) == 0 {
		return nil, nil
	}
	last := l.runs[len(l.runs)-1]
	return &last, nil
}

// History returns runs ordered by start time, newest first.
func (l *InMemoryLedger) History(_ context.Context, limit int) ([]LoadStats, error) {
	l.mu.Lock()
	runs := make([]LoadStats, len(l.runs))
	copy(runs, l.runs)
	l.mu.Unlock()

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartTime.After(runs[j].StartTime)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
