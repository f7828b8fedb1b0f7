// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
)

// ErrModelNotFound is returned when no checkpoint matches a name and version.
var ErrModelNotFound = errors.New("model checkpoint not found")

// Key prefixes for BadgerDB storage
const (
	modelKeyPrefix = "model:"
	metaKeyPrefix  = "meta:"
)

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Name is the estimator name (e.g., "svd").
	Name string `json:"name"`

	// Version is the checkpoint version (monotonically increasing per name).
	Version int `json:"version"`

	// RunID is the pipeline run that produced the model.
	RunID string `json:"run_id,omitempty"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	// InteractionCount is the number of interactions used for training.
	InteractionCount int `json:"interaction_count"`

	// ItemCount is the number of unique items.
	ItemCount int `json:"item_count"`

	// UserCount is the number of unique users.
	UserCount int `json:"user_count"`

	// Epochs, LearningRate and Regularization are the selected hyperparameters.
	Epochs         int     `json:"epochs"`
	LearningRate   float64 `json:"learning_rate"`
	Regularization float64 `json:"regularization"`

	// RMSE and MAE are the cross-validated scores of the selected parameters.
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`

	// Checksum is the SHA-256 checksum of the uncompressed model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long training took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// Config configures the checkpoint store.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps checkpoints in memory only. Intended for tests.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool
}

// Store manages versioned model checkpoints in BadgerDB.
//
// Each checkpoint is two keys written in one transaction: the JSON metadata
// and the gob-encoded, gzip-compressed model data. Versions are zero-padded in
// keys so iteration order matches version order.
type Store struct {
	db     *badger.DB
	ownsDB bool
	mu     sync.RWMutex

	// Keep track of latest version per model name
	versions map[string]int
}

// Open opens (or creates) a BadgerDB checkpoint store.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("checkpoint path is required unless in_memory is set")
		}
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = cfg.SyncWrites
		opts.Compression = options.Snappy
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s, err := NewStore(db)
	if err != nil {
		_ = db.Close() //nolint:errcheck // already returning the scan error
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// NewStore wraps an already open BadgerDB. The caller keeps ownership of db.
func NewStore(db *badger.DB) (*Store, error) {
	s := &Store{
		db:       db,
		versions: make(map[string]int),
	}

	if err := s.scanModels(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}

	return s, nil
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

// scanModels rebuilds the latest-version index from stored metadata keys.
func (s *Store) scanModels() error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(metaKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			name, version, ok := parseKey(string(it.Item().Key()), metaKeyPrefix)
			if !ok {
				continue
			}
			if current, seen := s.versions[name]; !seen || version > current {
				s.versions[name] = version
			}
		}
		return nil
	})
}

// Save stores a model with the given name, version and data.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, version int, data interface{}, meta ModelMetadata) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || strings.Contains(name, ":") {
		return nil, fmt.Errorf("invalid model name %q", name)
	}
	if version < 1 {
		return nil, fmt.Errorf("model version must be positive, got %d", version)
	}

	// Serialize model data
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()
	meta.Name = name
	meta.Version = version

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(modelKey(name, version), compressed.Bytes()); err != nil {
			return fmt.Errorf("set model: %w", err)
		}
		if err := txn.Set(metaKey(name, version), metaJSON); err != nil {
			return fmt.Errorf("set metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if current, ok := s.versions[name]; !ok || version > current {
		s.versions[name] = version
	}

	return &meta, nil
}

// Load loads a model by name and version into target.
// If version is 0, loads the latest version.
func (s *Store) Load(ctx context.Context, name string, version int, target interface{}) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		version, ok = s.versions[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
		}
	}

	var (
		meta       ModelMetadata
		compressed []byte
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(name, version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
		}
		if err != nil {
			return fmt.Errorf("get metadata: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		}); err != nil {
			return fmt.Errorf("decode metadata: %w", err)
		}

		item, err = txn.Get(modelKey(name, version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s v%d data", ErrModelNotFound, name, version)
		}
		if err != nil {
			return fmt.Errorf("get model: %w", err)
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	checksum := hex.EncodeToString(hash[:])
	if checksum != meta.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", meta.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	return &meta, nil
}

// LatestVersion returns the latest version number for a model.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[name]
	return version, ok
}

// NextVersion returns the version the next Save for name should use.
func (s *Store) NextVersion(name string) int {
	v, _ := s.LatestVersion(name)
	return v + 1
}

// ListModels returns metadata for the latest version of every stored model,
// sorted by name.
func (s *Store) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.versions))
	for name := range s.versions {
		names = append(names, name)
	}
	sort.Strings(names)

	var models []ModelMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		for _, name := range names {
			item, err := txn.Get(metaKey(name, s.versions[name]))
			if err != nil {
				continue
			}
			var meta ModelMetadata
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			}); err != nil {
				continue
			}
			models = append(models, meta)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	return models, nil
}

// Versions returns every stored version of a model in ascending order.
func (s *Store) Versions(ctx context.Context, name string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.versionsLocked(name)
}

func (s *Store) versionsLocked(name string) ([]int, error) {
	var versions []int
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(metaKeyPrefix + name + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			_, v, ok := parseKey(string(it.Item().Key()), metaKeyPrefix)
			if ok {
				versions = append(versions, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// Delete removes a specific model version.
func (s *Store) Delete(ctx context.Context, name string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deleteLocked(name, version); err != nil {
		return err
	}

	if s.versions[name] == version {
		versions, err := s.versionsLocked(name)
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			delete(s.versions, name)
		} else {
			s.versions[name] = versions[len(versions)-1]
		}
	}

	return nil
}

func (s *Store) deleteLocked(name string, version int) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(metaKey(name, version)); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
		}
		if err := txn.Delete(modelKey(name, version)); err != nil {
			return fmt.Errorf("delete model: %w", err)
		}
		if err := txn.Delete(metaKey(name, version)); err != nil {
			return fmt.Errorf("delete metadata: %w", err)
		}
		return nil
	})
	return err
}

// Prune removes old model versions, keeping only the latest keepVersions.
// It returns the number of versions removed.
func (s *Store) Prune(ctx context.Context, name string, keepVersions int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}

	versions, err := s.versionsLocked(name)
	if err != nil {
		return 0, err
	}
	if len(versions) <= keepVersions {
		return 0, nil
	}

	removed := 0
	for _, v := range versions[:len(versions)-keepVersions] {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := s.deleteLocked(name, v); err != nil {
			return removed, err
		}
		removed++
	}

	return removed, nil
}

func modelKey(name string, version int) []byte {
	return []byte(fmt.Sprintf("%s%s:%010d", modelKeyPrefix, name, version))
}

func metaKey(name string, version int) []byte {
	return []byte(fmt.Sprintf("%s%s:%010d", metaKeyPrefix, name, version))
}

// parseKey extracts the model name and version from a key like
// "meta:svd:0000000003".
func parseKey(key, prefix string) (name string, version int, ok bool) {
	rest := strings.TrimPrefix(key, prefix)
	idx := strings.LastIndex(rest, ":")
	if idx <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(rest[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return rest[:idx], version, true
}

// Register gob types for serialization.
//
//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(ModelMetadata{})
}
