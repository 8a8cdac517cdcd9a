package cache_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sentinelbot/sentinel/pkg/cache"
)

// testHit 测试用的检索命中结构体.
type testHit struct {
	Kind     string `json:"kind"`
	Value    string `json:"value"`
	FileName string `json:"file_name"`
}

// mockKVStore 模拟KV存储实现.
type mockKVStore struct {
	data map[string][]byte
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{
		data: make(map[string][]byte),
	}
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if value, exists := m.data[key]; exists {
		return value, nil
	}

	return nil, fmt.Errorf("key not found")
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockKVStore) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockKVStore) Exists(ctx context.Context, key string) (bool, error) {
	_, exists := m.data[key]
	return exists, nil
}

func (m *mockKVStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}

	return keys, nil
}

func (m *mockKVStore) Close() error {
	return nil
}

// TestCache_GetSet 测试 Get/Set 往返.
func TestCache_GetSet(t *testing.T) {
	mockStore := newMockKVStore()
	c := cache.NewCache(mockStore)
	ctx := context.Background()

	// 获取不存在的键
	_, err := cache.Get[testHit](ctx, c, "nonexistent")
	if err == nil {
		t.Error("Expected error for nonexistent key")
	}

	hit := testHit{Kind: "email", Value: "alice@example.com", FileName: "export.csv"}

	err = cache.Set(ctx, c, "search:1", hit, 0)
	if err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	retrieved, err := cache.Get[testHit](ctx, c, "search:1")
	if err != nil {
		t.Fatalf("Failed to get cache: %v", err)
	}

	if retrieved != hit {
		t.Errorf("Retrieved hit %+v does not match original %+v", retrieved, hit)
	}
}

// TestCache_Delete 测试 Delete 方法.
func TestCache_Delete(t *testing.T) {
	mockStore := newMockKVStore()
	c := cache.NewCache(mockStore)
	ctx := context.Background()

	hit := testHit{Kind: "username", Value: "svc_admin"}

	if err := cache.Set(ctx, c, "search:2", hit, 0); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	if err := c.Delete(ctx, "search:2"); err != nil {
		t.Fatalf("Failed to delete cache: %v", err)
	}

	exists, err := c.Exists(ctx, "search:2")
	if err != nil {
		t.Fatalf("Failed to check existence after deletion: %v", err)
	}

	if exists {
		t.Error("Key should not exist after deletion")
	}
}

// TestGetOrSet 测试 GetOrSet 方法.
func TestGetOrSet(t *testing.T) {
	mockStore := newMockKVStore()
	c := cache.NewCache(mockStore)
	ctx := context.Background()

	callCount := 0
	getter := func() ([]testHit, error) {
		callCount++
		return []testHit{{Kind: "password", Value: "hunter2hunter2"}}, nil
	}

	// 第一次调用，应该调用getter
	hits1, err := cache.GetOrSet(ctx, c, "search:3", getter, 0)
	if err != nil {
		t.Fatalf("Failed to get or set: %v", err)
	}

	if callCount != 1 {
		t.Errorf("Expected getter to be called once, got %d", callCount)
	}

	// 第二次调用，应该从缓存获取
	hits2, err := cache.GetOrSet(ctx, c, "search:3", getter, 0)
	if err != nil {
		t.Fatalf("Failed to get or set: %v", err)
	}

	if callCount != 1 {
		t.Errorf("Expected getter to be called only once, got %d", callCount)
	}

	if len(hits1) != len(hits2) || hits1[0] != hits2[0] {
		t.Errorf("Results don't match: %+v vs %+v", hits1, hits2)
	}
}

// TestGetOrSet_GetterError 测试 getter 返回错误的情况.
func TestGetOrSet_GetterError(t *testing.T) {
	mockStore := newMockKVStore()
	c := cache.NewCache(mockStore)
	ctx := context.Background()

	getter := func() (testHit, error) {
		return testHit{}, errors.New("getter error")
	}

	_, err := cache.GetOrSet(ctx, c, "search:error", getter, 0)
	if err == nil {
		t.Error("Expected error from getter")
	}
}

// TestCache_Clear 测试 Clear 方法.
func TestCache_Clear(t *testing.T) {
	mockStore := newMockKVStore()
	c := cache.NewCache(mockStore)
	ctx := context.Background()

	for i := range 3 {
		key := fmt.Sprintf("search:%d", i)

		err := cache.Set(ctx, c, key, testHit{Kind: "email", Value: fmt.Sprintf("u%d@x.io", i)}, 0)
		if err != nil {
			t.Fatalf("Failed to set cache %d: %v", i, err)
		}
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear cache: %v", err)
	}

	if len(mockStore.data) != 0 {
		t.Errorf("Expected 0 items after clear, got %d", len(mockStore.data))
	}
}
