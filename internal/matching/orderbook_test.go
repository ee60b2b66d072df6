package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/models"
)

func mustOrder(t *testing.T, id uint64, side models.Side, qty uint64, price models.Ticks, ot models.OrderType, tif models.TimeInForce) models.Order {
	t.Helper()
	o, err := models.New(id, side, qty, price, ot, tif)
	require.NoError(t, err)
	return o
}

func TestPartialLimitFill(t *testing.T) {
	ob := New(true)
	ob.Add(mustOrder(t, 1, models.Sell, 100, 1000, models.Limit, models.GTC))

	trades := ob.Add(mustOrder(t, 2, models.Buy, 50, 1200, models.Limit, models.GTC))

	require.Len(t, trades, 1)
	assert.Equal(t, uint64(1), trades[0].MakerID)
	assert.Equal(t, uint64(2), trades[0].TakerID)
	assert.Equal(t, models.Ticks(1000), trades[0].Price)
	assert.Equal(t, uint64(50), trades[0].Qty)

	ba, ok := ob.BestAsk()
	require.True(t, ok)
	assert.Equal(t, models.Ticks(1000), ba)
	assert.Equal(t, uint64(50), ob.DepthAtPrice(models.Sell, 1000))
	_, hasBid := ob.BestBid()
	assert.False(t, hasBid)
}

func TestMarketSweep(t *testing.T) {
	ob := New(true)
	ob.Add(mustOrder(t, 1, models.Sell, 30, 1000, models.Limit, models.GTC))
	ob.Add(mustOrder(t, 2, models.Sell, 30, 1001, models.Limit, models.GTC))

	trades := ob.Add(mustOrder(t, 3, models.Buy, 20, 0, models.Market, models.GTC))

	require.Len(t, trades, 1)
	assert.Equal(t, uint64(1), trades[0].MakerID)
	assert.Equal(t, uint64(3), trades[0].TakerID)
	assert.Equal(t, models.Ticks(1000), trades[0].Price)
	assert.Equal(t, uint64(20), trades[0].Qty)

	assert.Equal(t, uint64(10), ob.DepthAtPrice(models.Sell, 1000))
	assert.Equal(t, uint64(30), ob.DepthAtPrice(models.Sell, 1001))
}

func TestCancel(t *testing.T) {
	ob := New(true)
	ob.Add(mustOrder(t, 1, models.Buy, 40, 990, models.Limit, models.GTC))
	ob.Add(mustOrder(t, 2, models.Buy, 60, 990, models.Limit, models.GTC))

	assert.Equal(t, uint64(40), ob.Cancel(1))
	assert.Equal(t, uint64(60), ob.DepthAtPrice(models.Buy, 990))
	assert.Equal(t, uint64(0), ob.Cancel(1))
}

func TestReplaceLosesTimePriority(t *testing.T) {
	ob := New(true)
	ob.Add(mustOrder(t, 1, models.Buy, 50, 995, models.Limit, models.GTC))
	ob.Add(mustOrder(t, 2, models.Buy, 50, 995, models.Limit, models.GTC))

	newPrice := models.Ticks(996)
	ok, trades := ob.Replace(1, &newPrice, nil, nil)
	require.True(t, ok)
	assert.Empty(t, trades)

	assert.Equal(t, uint64(50), ob.DepthAtPrice(models.Buy, 996))
	assert.Equal(t, uint64(50), ob.DepthAtPrice(models.Buy, 995))

	trades = ob.Add(mustOrder(t, 3, models.Sell, 50, 996, models.Limit, models.GTC))
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(1), trades[0].MakerID)
}

func TestIOCResidualDiscarded(t *testing.T) {
	ob := New(true)
	ob.Add(mustOrder(t, 1, models.Sell, 50, 1000, models.Limit, models.GTC))

	trades := ob.Add(mustOrder(t, 2, models.Buy, 100, 1000, models.Limit, models.IOC))

	require.Len(t, trades, 1)
	assert.Equal(t, uint64(50), trades[0].Qty)
	assert.Equal(t, uint64(0), ob.DepthAtPrice(models.Buy, 1000))
	_, _, ok := ob.Locate(2)
	assert.False(t, ok)
}

func TestFOKKillsWhenUnfillable(t *testing.T) {
	ob := New(true)
	ob.Add(mustOrder(t, 1, models.Sell, 50, 1000, models.Limit, models.GTC))

	trades := ob.Add(mustOrder(t, 2, models.Buy, 100, 1200, models.Limit, models.FOK))

	assert.Empty(t, trades)
	assert.Equal(t, uint64(50), ob.DepthAtPrice(models.Sell, 1000))
	_, _, ok := ob.Locate(2)
	assert.False(t, ok)
}

func TestFOKFillsWhenFullyExecutable(t *testing.T) {
	ob := New(true)
	ob.Add(mustOrder(t, 1, models.Sell, 100, 1000, models.Limit, models.GTC))

	trades := ob.Add(mustOrder(t, 2, models.Buy, 100, 1200, models.Limit, models.FOK))

	require.Len(t, trades, 1)
	assert.Equal(t, uint64(100), trades[0].Qty)
	assert.Equal(t, uint64(0), ob.DepthAtPrice(models.Sell, 1000))
}

func TestCrossedBookNeverOccurs(t *testing.T) {
	ob := New(true)
	ob.Add(mustOrder(t, 1, models.Buy, 10, 990, models.Limit, models.GTC))
	ob.Add(mustOrder(t, 2, models.Sell, 10, 1010, models.Limit, models.GTC))

	bb, _ := ob.BestBid()
	ba, _ := ob.BestAsk()
	assert.Less(t, bb, ba)
}

func TestSequenceMonotonicallyIncreasesAcrossOrdersAndTrades(t *testing.T) {
	ob := New(true)
	ob.Add(mustOrder(t, 1, models.Sell, 100, 1000, models.Limit, models.GTC))
	trades := ob.Add(mustOrder(t, 2, models.Buy, 100, 1000, models.Limit, models.GTC))
	require.Len(t, trades, 1)
	assert.Greater(t, trades[0].Ts, ob.seq-1)
}

func TestReplaceUnknownIDFails(t *testing.T) {
	ob := New(true)
	ok, trades := ob.Replace(999, nil, nil, nil)
	assert.False(t, ok)
	assert.Nil(t, trades)
}

func TestReplaceShrinkBelowFilledZeroesRemaining(t *testing.T) {
	ob := New(true)
	ob.Add(mustOrder(t, 1, models.Sell, 100, 1000, models.Limit, models.GTC))
	trades := ob.Add(mustOrder(t, 2, models.Buy, 40, 1000, models.Limit, models.GTC))
	require.Len(t, trades, 1)

	newQty := uint64(30)
	ok, trades := ob.Replace(1, nil, &newQty, nil)
	require.True(t, ok)
	assert.Empty(t, trades)
	_, _, stillResting := ob.Locate(1)
	assert.False(t, stillResting)
}
