package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/models"
)

func TestSideBookBuyBestIsHighest(t *testing.T) {
	sb := NewSideBook(models.Buy)
	sb.RestOrCreate(990).PushBack(&models.Order{ID: 1, Remaining: 10})
	sb.RestOrCreate(995).PushBack(&models.Order{ID: 2, Remaining: 10})
	sb.RestOrCreate(985).PushBack(&models.Order{ID: 3, Remaining: 10})

	best, ok := sb.Best()
	require.True(t, ok)
	assert.Equal(t, models.Ticks(995), best)
}

func TestSideBookSellBestIsLowest(t *testing.T) {
	sb := NewSideBook(models.Sell)
	sb.RestOrCreate(1010).PushBack(&models.Order{ID: 1, Remaining: 10})
	sb.RestOrCreate(1000).PushBack(&models.Order{ID: 2, Remaining: 10})
	sb.RestOrCreate(1005).PushBack(&models.Order{ID: 3, Remaining: 10})

	best, ok := sb.Best()
	require.True(t, ok)
	assert.Equal(t, models.Ticks(1000), best)
}

func TestSideBookBestSkipsStaleEntries(t *testing.T) {
	sb := NewSideBook(models.Buy)
	sb.RestOrCreate(995).PushBack(&models.Order{ID: 1, Remaining: 10})
	lvl := sb.RestOrCreate(1000)
	lvl.PushBack(&models.Order{ID: 2, Remaining: 10})

	lvl.PopFront()
	sb.DropIfEmpty(1000)

	best, ok := sb.Best()
	require.True(t, ok)
	assert.Equal(t, models.Ticks(995), best)
}

func TestSideBookLevelsBestToWorst(t *testing.T) {
	sb := NewSideBook(models.Buy)
	sb.RestOrCreate(990).PushBack(&models.Order{ID: 1, Remaining: 10})
	sb.RestOrCreate(995).PushBack(&models.Order{ID: 2, Remaining: 20})

	levels := sb.Levels()
	require.Len(t, levels, 2)
	assert.Equal(t, models.Ticks(995), levels[0].Price)
	assert.Equal(t, models.Ticks(990), levels[1].Price)
}

func TestSideBookEmptyAfterAllRemoved(t *testing.T) {
	sb := NewSideBook(models.Buy)
	lvl := sb.RestOrCreate(1000)
	lvl.PushBack(&models.Order{ID: 1, Remaining: 10})
	lvl.PopFront()
	sb.DropIfEmpty(1000)

	_, ok := sb.Best()
	assert.False(t, ok)
	assert.Nil(t, sb.Level(1000))
}
