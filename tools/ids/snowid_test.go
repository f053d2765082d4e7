package ids

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUniqueAndIncreasing(t *testing.T) {
	const n = 10000
	seen := make(map[int64]struct{}, n)
	var prev int64
	for i := 0; i < n; i++ {
		id := Generate()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d at iteration %d", id, i)
		}
		seen[id] = struct{}{}
		assert.Greater(t, id, prev, "ids must be strictly increasing on one node")
		prev = id
	}
}

func TestGenerateConcurrent(t *testing.T) {
	const workers = 8
	const perWorker = 2000

	var mu sync.Mutex
	seen := make(map[int64]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, Generate())
			}
			mu.Lock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestGenerateString(t *testing.T) {
	s := GenerateString()
	assert.NotEmpty(t, s)
	assert.NotEqual(t, s, GenerateString())
}

func TestSetNodeIDClampsRange(t *testing.T) {
	SetNodeID(5000) // out of range falls back to the default node
	assert.NotZero(t, Generate())
	SetNodeID(1)
}
