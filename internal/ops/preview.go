package ops

import (
	"log/slog"
	"path/filepath"

	"github.com/jmleung/deltamail/internal/config"
	"github.com/jmleung/deltamail/internal/diff"
	"github.com/jmleung/deltamail/internal/notify"
	"github.com/jmleung/deltamail/internal/snapshot"
)

// PreviewOutput is the dry-run view of what a run would send. No messages
// are built and no drafts are written.
type PreviewOutput struct {
	Older      string                   `json:"older"`
	Newer      string                   `json:"newer"`
	NovelCount int                      `json:"novel_count"`
	NovelKeys  []string                 `json:"novel_keys"`
	Groups     map[string][]notify.Item `json:"groups"`
	Skipped    []notify.SkipDiagnostic  `json:"skipped,omitempty"`
}

// Preview computes the snapshot pair, novelty set, and contact groups
// without dispatching anything.
func Preview(cfg *config.Config, log *slog.Logger) (*PreviewOutput, error) {
	older, newer, err := snapshot.LatestPair(cfg.SnapshotDir)
	if err != nil {
		return nil, err
	}
	log.Info("previewing snapshots",
		slog.String("older", filepath.Base(older)),
		slog.String("newer", filepath.Base(newer)))

	olderSnap, err := snapshot.Load(older)
	if err != nil {
		return nil, err
	}
	newerSnap, err := snapshot.Load(newer)
	if err != nil {
		return nil, err
	}

	novel := diff.NewKeys(
		diff.Keys(olderSnap.Records, cfg.Columns.Key),
		diff.Keys(newerSnap.Records, cfg.Columns.Key),
	)
	groups, skipped := notify.GroupByContact(newerSnap.Records, novel, cfg.Columns)

	return &PreviewOutput{
		Older:      older,
		Newer:      newer,
		NovelCount: len(novel),
		NovelKeys:  novel.Sorted(),
		Groups:     groups,
		Skipped:    skipped,
	}, nil
}
