package book

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fenrir/internal/models"
)

func TestLevelFIFOOrder(t *testing.T) {
	lvl := newLevel(models.Buy, 1000)
	o1 := &models.Order{ID: 1, Remaining: 10}
	o2 := &models.Order{ID: 2, Remaining: 20}
	lvl.PushBack(o1)
	lvl.PushBack(o2)

	assert.Equal(t, uint64(1), lvl.Front().ID)
	assert.Equal(t, uint64(30), lvl.Depth())

	lvl.PopFront()
	assert.Equal(t, uint64(2), lvl.Front().ID)
}

func TestLevelRemoveIDPreservesOrder(t *testing.T) {
	lvl := newLevel(models.Sell, 1000)
	lvl.PushBack(&models.Order{ID: 1, Remaining: 10})
	lvl.PushBack(&models.Order{ID: 2, Remaining: 20})
	lvl.PushBack(&models.Order{ID: 3, Remaining: 30})

	removed := lvl.RemoveID(2)
	assert.Equal(t, uint64(2), removed.ID)
	assert.Equal(t, uint64(1), lvl.Orders[0].ID)
	assert.Equal(t, uint64(3), lvl.Orders[1].ID)
}

func TestLevelRemoveIDMissingReturnsNil(t *testing.T) {
	lvl := newLevel(models.Buy, 1000)
	assert.Nil(t, lvl.RemoveID(42))
}

func TestLevelEmpty(t *testing.T) {
	lvl := newLevel(models.Buy, 1000)
	assert.True(t, lvl.Empty())
	lvl.PushBack(&models.Order{ID: 1, Remaining: 10})
	assert.False(t, lvl.Empty())
}
