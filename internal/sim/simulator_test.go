package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.NEvents = 500
	cfg.SnapshotEvery = 50
	return cfg
}

func TestRunProducesArtifacts(t *testing.T) {
	s, err := New(smallConfig())
	require.NoError(t, err)

	art := s.Run()

	assert.Greater(t, art.OrderCount, uint64(0))
	assert.NotEmpty(t, art.Snapshots)
	assert.Len(t, art.LatenciesNs, 500)
}

func TestRunIsDeterministicForFixedSeed(t *testing.T) {
	cfg := smallConfig()

	s1, err := New(cfg)
	require.NoError(t, err)
	art1 := s1.Run()

	s2, err := New(cfg)
	require.NoError(t, err)
	art2 := s2.Run()

	require.Equal(t, len(art1.Trades), len(art2.Trades))
	for i := range art1.Trades {
		assert.Equal(t, art1.Trades[i], art2.Trades[i])
	}
	assert.Equal(t, art1.OrderCount, art2.OrderCount)
	assert.Equal(t, art1.CancelCount, art2.CancelCount)
	assert.Equal(t, art1.ReplaceCount, art2.ReplaceCount)
}

func TestRunCountsCancelsAndReplaces(t *testing.T) {
	cfg := smallConfig()
	cfg.NEvents = 5000
	s, err := New(cfg)
	require.NoError(t, err)

	art := s.Run()

	assert.Greater(t, art.CancelCount, uint64(0))
	assert.Greater(t, art.ReplaceCount, uint64(0))
}
