package utils

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerateRunID(t *testing.T) {
	id := GenerateRunID()
	if !strings.HasPrefix(id, "search-") {
		t.Errorf("GenerateRunID should start with 'search-': %s", id)
	}
	// search-YYYYMMDD-HHMMSS-xxxxxxxx
	parts := strings.Split(id, "-")
	if len(parts) != 4 {
		t.Fatalf("expected 4 dash separated parts, got %d: %s", len(parts), id)
	}
	if len(parts[1]) != 8 || len(parts[2]) != 6 || len(parts[3]) != 8 {
		t.Errorf("unexpected run id layout: %s", id)
	}
}

func TestGenerateRunIDConcurrent(t *testing.T) {
	const n = 200
	var mu sync.Mutex
	seen := make(map[string]bool, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := GenerateRunID()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("expected %d unique run ids, got %d", n, len(seen))
	}
}
