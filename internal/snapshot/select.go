package snapshot

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmleung/deltamail/internal/errors"
)

// LatestPair returns the paths of the two most recent snapshot files in dir
// as (older, newer). Recency is by lexicographic file name, which the export
// naming convention makes date order. Fails with INSUFFICIENT_SNAPSHOTS when
// fewer than two *.csv files exist.
func LatestPair(dir string) (older, newer string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", errors.NewSnapshotRead(dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".csv") {
			names = append(names, e.Name())
		}
	}
	if len(names) < 2 {
		return "", "", errors.NewInsufficientSnapshots(dir, len(names))
	}

	sort.Strings(names)
	older = filepath.Join(dir, names[len(names)-2])
	newer = filepath.Join(dir, names[len(names)-1])
	return older, newer, nil
}
