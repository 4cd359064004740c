package core

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	t.Run("FormatsPrefix", func(t *testing.T) {
		id := NewID(" CB ")
		assert.True(t, strings.HasPrefix(id, "cb_"))
		assert.Len(t, id, len("cb_")+26)
		assert.True(t, HasPrefix(id, "cb"))
	})

	t.Run("PanicsOnEmptyPrefix", func(t *testing.T) {
		assert.Panics(t, func() { NewID("  ") })
	})

	t.Run("UniqueUnderConcurrency", func(t *testing.T) {
		const n = 200
		ids := make(chan string, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ids <- NewID("inv")
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[string]bool, n)
		for id := range ids {
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})
}

func TestHasPrefix(t *testing.T) {
	assert.False(t, HasPrefix("inv_not-a-ulid", "inv"))
	assert.False(t, HasPrefix(NewID("cb"), "inv"))
	assert.False(t, HasPrefix("", "inv"))
}
