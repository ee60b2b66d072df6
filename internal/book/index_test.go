package book

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fenrir/internal/models"
)

func TestIndexSetGetDelete(t *testing.T) {
	ix := NewIndex()
	ix.Set(1, Location{Side: models.Buy, Price: 1000})

	loc, ok := ix.Get(1)
	assert.True(t, ok)
	assert.Equal(t, models.Buy, loc.Side)
	assert.Equal(t, models.Ticks(1000), loc.Price)
	assert.Equal(t, 1, ix.Len())

	ix.Delete(1)
	_, ok = ix.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, ix.Len())
}

func TestIndexIDs(t *testing.T) {
	ix := NewIndex()
	ix.Set(1, Location{Side: models.Buy, Price: 1000})
	ix.Set(2, Location{Side: models.Sell, Price: 1005})

	ids := ix.IDs()
	assert.ElementsMatch(t, []uint64{1, 2}, ids)
}
