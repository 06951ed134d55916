package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, int]()

	cache.Set("key1", 42)
	value, exists := cache.Get("key1")
	if !exists || value != 42 {
		t.Errorf("expected 42, got %d (exists: %v)", value, exists)
	}

	if _, exists = cache.Get("nonexistent"); exists {
		t.Error("expected nonexistent key to not exist")
	}

	cache.Delete("key1")
	if _, exists = cache.Get("key1"); exists {
		t.Error("expected key1 to be deleted")
	}

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 2 {
		t.Errorf("expected 1 hit and 2 misses, got %+v", stats)
	}
}

func TestCache_GetOrCompute(t *testing.T) {
	cache := NewCache[string, string]()
	calls := 0
	compute := func() (string, error) {
		calls++
		return "list<string>", nil
	}

	for i := 0; i < 3; i++ {
		got, err := cache.GetOrCompute("fp", compute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "list<string>" {
			t.Errorf("unexpected value %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single computation, got %d", calls)
	}

	boom := errors.New("boom")
	if _, err := cache.GetOrCompute("bad", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if cache.Size() != 1 {
		t.Errorf("errors must not be cached, size %d", cache.Size())
	}
}

func TestCache_ClearResetsStats(t *testing.T) {
	cache := NewCache[string, string]()
	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Get("key1")

	if cache.Size() != 2 || len(cache.Keys()) != 2 {
		t.Errorf("expected size 2, got %d", cache.Size())
	}

	cache.Clear()

	if stats := cache.Stats(); stats != (CacheStats{}) {
		t.Errorf("expected empty stats after clear, got %+v", stats)
	}
}

func TestCache_FileValidation(t *testing.T) {
	cache := NewCache[string, string]()

	tmpFile := filepath.Join(t.TempDir(), "greeter.go")
	content := "package greeter"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	if err := cache.SetWithFileInfo("greeter", content, tmpFile); err != nil {
		t.Fatalf("failed to set cache with file info: %v", err)
	}

	if value, exists := cache.GetWithFileValidation("greeter", tmpFile); !exists || value != content {
		t.Errorf("expected cached content, got %q (exists: %v)", value, exists)
	}

	time.Sleep(10 * time.Millisecond)
	if err := os.WriteFile(tmpFile, []byte("package greeter // changed"), 0644); err != nil {
		t.Fatalf("failed to modify temp file: %v", err)
	}

	if _, exists := cache.GetWithFileValidation("greeter", tmpFile); exists {
		t.Error("expected cached value to be invalidated after file change")
	}
	if cache.Size() != 0 {
		t.Errorf("expected cache to be empty after invalidation, got size %d", cache.Size())
	}
}

func TestCache_SetWithFileInfoNonExistentFile(t *testing.T) {
	cache := NewCache[string, string]()

	if err := cache.SetWithFileInfo("test", "content", "/nonexistent/file.go"); err == nil {
		t.Error("expected error for non-existent file")
	}
	if _, exists := cache.GetWithFileValidation("test", "/nonexistent/file.go"); exists {
		t.Error("expected false for non-existent file")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache[string, int]()
	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Set(fmt.Sprintf("key%d_%d", id, j), id*100+j)
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = cache.GetOrCompute(fmt.Sprintf("key%d_%d", id, j), func() (int, error) { return id*100 + j, nil })
			}
		}(i)
	}
	wg.Wait()

	if cache.Size() != 500 {
		t.Errorf("expected 500 items in cache, got %d", cache.Size())
	}
}
