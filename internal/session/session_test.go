// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestCreateAndGet(t *testing.T) {
	s := NewStore()
	plan := []types.ProcessedPaper{{Paper: types.Paper{Title: "A"}}}

	sess := s.Create("diffusion models", nil, plan)
	_, err := uuid.Parse(sess.ID)
	require.NoError(t, err)

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.Equal(t, "diffusion models", got.Query)
	assert.Equal(t, plan, got.ReadingPlan)
}

func TestGetUnknown(t *testing.T) {
	_, err := NewStore().Get("does-not-exist")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	ids := make([]string, 50)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = s.Create("q", nil, nil).ID
			_, _ = s.Get(ids[i])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
