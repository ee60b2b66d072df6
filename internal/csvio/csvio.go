// Package csvio persists simulator artifacts to CSV files, the same
// three-file layout (trades/snapshots/latencies) the Python original
// writes via pandas.DataFrame.to_csv. No third-party CSV writer appears
// anywhere in the retrieved example pack, so this one deliberately
// stays on encoding/csv rather than inventing a dependency that isn't
// grounded anywhere in the corpus.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fenrir/internal/sim"
)

// Files is the set of paths SaveArtifacts wrote to, keyed the same way
// as the Python save_artifacts return dict.
type Files struct {
	TradesCSV    string
	SnapshotsCSV string
	LatenciesCSV string
}

// SaveArtifacts writes art's trades, snapshots, and latencies to
// timestamped CSV files under outDir, creating it if necessary.
func SaveArtifacts(art sim.Artifacts, outDir string, timestamp string) (Files, error) {
	if err := os.MkdirAll(filepath.Join(outDir, "figures"), 0o755); err != nil {
		return Files{}, fmt.Errorf("csvio: creating output dir: %w", err)
	}

	files := Files{
		TradesCSV:    filepath.Join(outDir, fmt.Sprintf("trades_%s.csv", timestamp)),
		SnapshotsCSV: filepath.Join(outDir, fmt.Sprintf("snapshots_%s.csv", timestamp)),
		LatenciesCSV: filepath.Join(outDir, fmt.Sprintf("latencies_%s.csv", timestamp)),
	}

	if err := writeTrades(files.TradesCSV, art.Trades); err != nil {
		return Files{}, err
	}
	if err := writeSnapshots(files.SnapshotsCSV, art.Snapshots); err != nil {
		return Files{}, err
	}
	if err := writeLatencies(files.LatenciesCSV, art.LatenciesNs); err != nil {
		return Files{}, err
	}
	return files, nil
}

func writeTrades(path string, trades []sim.Trade) error {
	return withWriter(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"maker_id", "taker_id", "price", "qty", "ts"}); err != nil {
			return err
		}
		for _, t := range trades {
			row := []string{
				strconv.FormatUint(t.MakerID, 10),
				strconv.FormatUint(t.TakerID, 10),
				strconv.FormatFloat(t.Price, 'f', -1, 64),
				strconv.FormatUint(t.Qty, 10),
				strconv.FormatUint(t.Ts, 10),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeSnapshots(path string, snaps []sim.Snapshot) error {
	return withWriter(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"event", "best_bid", "best_ask", "bid_depth", "ask_depth"}); err != nil {
			return err
		}
		for _, s := range snaps {
			row := []string{
				strconv.Itoa(s.Event),
				optionalFloat(s.BestBid, s.HasBid),
				optionalFloat(s.BestAsk, s.HasAsk),
				strconv.FormatUint(s.BidDepth, 10),
				strconv.FormatUint(s.AskDepth, 10),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeLatencies(path string, latenciesNs []int64) error {
	return withWriter(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"latency_ns"}); err != nil {
			return err
		}
		for _, l := range latenciesNs {
			if err := w.Write([]string{strconv.FormatInt(l, 10)}); err != nil {
				return err
			}
		}
		return nil
	})
}

func optionalFloat(v float64, present bool) string {
	if !present {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func withWriter(path string, fn func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvio: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fn(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
