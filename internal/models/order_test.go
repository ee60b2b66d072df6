package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsZeroQty(t *testing.T) {
	_, err := New(1, Buy, 0, 100, Limit, GTC)
	assert.ErrorIs(t, err, ErrNonPositiveQty)
}

func TestNewRejectsLimitWithoutPrice(t *testing.T) {
	_, err := New(1, Buy, 10, 0, Limit, GTC)
	assert.ErrorIs(t, err, ErrLimitNeedsPrice)
}

func TestNewRejectsMarketWithPrice(t *testing.T) {
	_, err := New(1, Buy, 10, 100, Market, GTC)
	assert.ErrorIs(t, err, ErrMarketHasPrice)
}

func TestNewForcesMarketOrdersToIOC(t *testing.T) {
	o, err := New(1, Buy, 10, 0, Market, GTC)
	require.NoError(t, err)
	assert.Equal(t, IOC, o.TIF)
}

func TestNewSetsRemainingToQty(t *testing.T) {
	o, err := New(1, Buy, 10, 100, Limit, GTC)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), o.Remaining)
}

func TestIsActive(t *testing.T) {
	o, err := New(1, Buy, 10, 100, Limit, GTC)
	require.NoError(t, err)
	assert.True(t, o.IsActive())
	o.Remaining = 0
	assert.False(t, o.IsActive())
}

func TestCloneIsIndependent(t *testing.T) {
	o, err := New(1, Buy, 10, 100, Limit, GTC)
	require.NoError(t, err)
	clone := o.Clone()
	clone.Remaining = 5
	assert.Equal(t, uint64(10), o.Remaining)
}
