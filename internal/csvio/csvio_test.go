package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/sim"
)

func TestSaveArtifactsWritesThreeFiles(t *testing.T) {
	dir := t.TempDir()
	art := sim.Artifacts{
		Trades:      []sim.Trade{{MakerID: 1, TakerID: 2, Price: 10.5, Qty: 50, Ts: 3}},
		Snapshots:   []sim.Snapshot{{Event: 1, HasBid: true, BestBid: 9.99, BidDepth: 100}},
		LatenciesNs: []int64{100, 200, 300},
	}

	files, err := SaveArtifacts(art, dir, "test")
	require.NoError(t, err)

	for _, path := range []string{files.TradesCSV, files.SnapshotsCSV, files.LatenciesCSV} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}

	_, err = os.Stat(filepath.Join(dir, "figures"))
	assert.NoError(t, err)
}
