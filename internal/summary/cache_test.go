package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/maajod/maajod-backend/pkg/logger"
	"github.com/maajod/maajod-backend/pkg/redis"
)

type stubCacheStore struct {
	entries map[string]string

	setKey string
	setTTL time.Duration
	delKey string

	getErr error
	setErr error
	delErr error
}

func (s *stubCacheStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	if s.entries == nil {
		s.entries = map[string]string{}
	}
	s.setKey = key
	s.setTTL = ttl
	s.entries[key] = string(value.([]byte))
	return nil
}

func (s *stubCacheStore) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	raw, ok := s.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return raw, nil
}

func (s *stubCacheStore) Del(_ context.Context, keys ...string) error {
	if s.delErr != nil {
		return s.delErr
	}
	if len(keys) > 0 {
		s.delKey = keys[0]
		delete(s.entries, keys[0])
	}
	return nil
}

func (s *stubCacheStore) SummaryKey(storeID string, year, month int) string {
	return fmt.Sprintf("summary:%s:%04d-%02d", storeID, year, month)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "summary-test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})
}

func newTestCache(t *testing.T, store *stubCacheStore) *Cache {
	t.Helper()
	cache, err := NewCache(store, 5*time.Minute, testLogger())
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	return cache
}

func TestNewCacheRequiresDeps(t *testing.T) {
	if _, err := NewCache(nil, time.Minute, testLogger()); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewCache(&stubCacheStore{}, 0, testLogger()); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
	if _, err := NewCache(&stubCacheStore{}, time.Minute, nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
}

func TestCacheRoundtrip(t *testing.T) {
	store := &stubCacheStore{}
	cache := newTestCache(t, store)
	storeID := uuid.New()

	value := &Summary{
		TotalIncome:  decimal.RequireFromString("120"),
		TotalExpense: decimal.RequireFromString("45"),
		Net:          decimal.RequireFromString("75"),
	}
	cache.Put(context.Background(), storeID, 2024, time.March, value)

	if store.setTTL != 5*time.Minute {
		t.Fatalf("expected configured ttl, got %s", store.setTTL)
	}

	cached, ok := cache.Get(context.Background(), storeID, 2024, time.March)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !cached.Net.Equal(value.Net) {
		t.Fatalf("unexpected net: %s", cached.Net)
	}
}

func TestCacheMissOnAbsentKey(t *testing.T) {
	cache := newTestCache(t, &stubCacheStore{})

	if _, ok := cache.Get(context.Background(), uuid.New(), 2024, time.March); ok {
		t.Fatal("expected cache miss")
	}
}

func TestCacheReadFailureIsAMiss(t *testing.T) {
	store := &stubCacheStore{getErr: errors.New("connection refused")}
	cache := newTestCache(t, store)

	if _, ok := cache.Get(context.Background(), uuid.New(), 2024, time.March); ok {
		t.Fatal("backend failure must degrade to a miss")
	}
}

func TestCacheCorruptEntryIsAMiss(t *testing.T) {
	store := &stubCacheStore{}
	cache := newTestCache(t, store)
	storeID := uuid.New()

	key := store.SummaryKey(storeID.String(), 2024, int(time.March))
	store.entries = map[string]string{key: "{not json"}

	if _, ok := cache.Get(context.Background(), storeID, 2024, time.March); ok {
		t.Fatal("corrupt entry must degrade to a miss")
	}
}

func TestCacheWriteFailureIsSwallowed(t *testing.T) {
	store := &stubCacheStore{setErr: errors.New("connection refused")}
	cache := newTestCache(t, store)

	cache.Put(context.Background(), uuid.New(), 2024, time.March, &Summary{})
}

func TestCacheInvalidateRemovesEntry(t *testing.T) {
	store := &stubCacheStore{}
	cache := newTestCache(t, store)
	storeID := uuid.New()

	cache.Put(context.Background(), storeID, 2024, time.March, &Summary{})
	cache.Invalidate(context.Background(), storeID, 2024, time.March)

	if store.delKey != store.SummaryKey(storeID.String(), 2024, int(time.March)) {
		t.Fatalf("unexpected deleted key: %q", store.delKey)
	}
	if _, ok := cache.Get(context.Background(), storeID, 2024, time.March); ok {
		t.Fatal("expected entry to be gone after invalidation")
	}
}

func TestCacheEntrySurvivesJSONRoundtrip(t *testing.T) {
	value := &Summary{
		TotalIncome:  decimal.RequireFromString("0.10"),
		TotalExpense: decimal.RequireFromString("0.20"),
		Net:          decimal.RequireFromString("-0.10"),
	}
	payload, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Summary
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Net.Equal(value.Net) {
		t.Fatalf("net drifted through serialization: %s", decoded.Net)
	}
}
