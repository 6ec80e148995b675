package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/angelmondragon/packfinderz-client/pkg/config"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Namespaces used by the sync layer. Writers always rewrite the full
// collection under a key, never patch partial state.
const (
	NamespaceSession  = "session"
	NamespaceCart     = "cart"
	NamespaceOrders   = "orders"
	NamespaceCheckout = "checkout"
	NamespacePrefs    = "prefs"
)

// Entry is the durable row backing one namespaced key.
type Entry struct {
	Namespace string `gorm:"primaryKey;size:64"`
	Key       string `gorm:"primaryKey;size:128"`
	Value     []byte
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

// Store is the device-local persisted state: an in-memory map that is
// authoritative for the running session, written through to sqlite.
// Durable write failures are logged and never fail the caller.
type Store struct {
	mu   sync.Mutex
	mem  map[string][]byte
	conn *gorm.DB
	logg *logger.Logger
}

func memKey(namespace, key string) string {
	return namespace + "\x00" + key
}

// Open boots the store, creating the sqlite file and schema as needed,
// and warms the in-memory view from disk.
func Open(ctx context.Context, cfg config.StoreConfig, logg *logger.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := conn.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrating store schema: %w", err)
	}

	s := &Store{
		mem:  map[string][]byte{},
		conn: conn,
		logg: logg,
	}
	if err := s.warm(ctx); err != nil {
		return nil, err
	}

	logg.Info(ctx, "persisted store opened")
	return s, nil
}

func (s *Store) warm(ctx context.Context) error {
	var entries []Entry
	if err := s.conn.WithContext(ctx).Find(&entries).Error; err != nil {
		return fmt.Errorf("warming store: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		value := make([]byte, len(entry.Value))
		copy(value, entry.Value)
		s.mem[memKey(entry.Namespace, entry.Key)] = value
	}
	return nil
}

// Get returns the value stored under namespace/key and whether it exists.
func (s *Store) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if s == nil {
		return nil, false, fmt.Errorf("store not initialized")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.mem[memKey(namespace, key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Put stores the value under namespace/key. The in-memory view always
// updates; the sqlite write-through is best-effort.
func (s *Store) Put(ctx context.Context, namespace, key string, value []byte) error {
	if s == nil {
		return fmt.Errorf("store not initialized")
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	s.mem[memKey(namespace, key)] = stored
	s.mu.Unlock()

	entry := Entry{Namespace: namespace, Key: key, Value: stored, UpdatedAt: time.Now().UTC()}
	if err := s.conn.WithContext(ctx).Save(&entry).Error; err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"namespace": namespace, "key": key})
		s.logg.Warn(logCtx, "durable store write failed, in-memory state retained")
	}
	return nil
}

// Delete removes the value under namespace/key. Absent keys are a no-op.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	if s == nil {
		return fmt.Errorf("store not initialized")
	}
	s.mu.Lock()
	delete(s.mem, memKey(namespace, key))
	s.mu.Unlock()

	if err := s.conn.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		Delete(&Entry{}).Error; err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"namespace": namespace, "key": key})
		s.logg.Warn(logCtx, "durable store delete failed, in-memory state retained")
	}
	return nil
}

// Keys lists the keys present in a namespace, sorted for determinism.
func (s *Store) Keys(ctx context.Context, namespace string) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	prefix := namespace + "\x00"
	s.mu.Lock()
	keys := make([]string, 0)
	for k := range s.mem {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k[len(prefix):])
		}
	}
	s.mu.Unlock()
	sort.Strings(keys)
	return keys, nil
}

// Clear drops every key in the namespace. Used on logout.
func (s *Store) Clear(ctx context.Context, namespace string) error {
	if s == nil {
		return fmt.Errorf("store not initialized")
	}
	prefix := namespace + "\x00"
	s.mu.Lock()
	for k := range s.mem {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(s.mem, k)
		}
	}
	s.mu.Unlock()

	if err := s.conn.WithContext(ctx).
		Where("namespace = ?", namespace).
		Delete(&Entry{}).Error; err != nil {
		logCtx := s.logg.WithField(ctx, "namespace", namespace)
		s.logg.Warn(logCtx, "durable store clear failed, in-memory state retained")
	}
	return nil
}

// GetJSON unmarshals the stored value into out, reporting presence.
func (s *Store) GetJSON(ctx context.Context, namespace, key string, out any) (bool, error) {
	raw, ok, err := s.Get(ctx, namespace, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decoding %s/%s: %w", namespace, key, err)
	}
	return true, nil
}

// PutJSON marshals value and stores it under namespace/key.
func (s *Store) PutJSON(ctx context.Context, namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", namespace, key, err)
	}
	return s.Put(ctx, namespace, key, raw)
}

// Ping verifies the durable layer is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return fmt.Errorf("getting sql db handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return fmt.Errorf("getting sql db handle: %w", err)
	}
	return sqlDB.Close()
}
