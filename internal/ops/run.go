package ops

import (
	"context"
	"crypto/rand"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmleung/deltamail/internal/config"
	"github.com/jmleung/deltamail/internal/diff"
	"github.com/jmleung/deltamail/internal/errors"
	"github.com/jmleung/deltamail/internal/journal"
	"github.com/jmleung/deltamail/internal/notify"
	"github.com/jmleung/deltamail/internal/snapshot"
)

// RunDeps carries the injectable collaborators of a run. Zero values get
// sensible defaults: a real SMTP transport from config, no journal, and
// wall-clock time.
type RunDeps struct {
	Transport notify.Transport
	Journal   *journal.Journal
	Now       func() time.Time
}

// RunOutput summarizes one completed run.
type RunOutput struct {
	RunID      string `json:"run_id"`
	Older      string `json:"older"`
	Newer      string `json:"newer"`
	NovelCount int    `json:"novel_count"`
	Sent       int    `json:"sent"`
	Deferred   int    `json:"deferred"`
	Skipped    int    `json:"skipped"`
}

// Run executes the full pipeline: select the snapshot pair, load both,
// compute the novelty set, group by contact, then build and dispatch one
// message per contact (or per record, depending on cfg.Mode). Transport
// failures defer to drafts and never abort the run; setup and draft-write
// failures do.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger, deps RunDeps) (*RunOutput, error) {
	if deps.Transport == nil {
		deps.Transport = notify.NewSMTPTransport(cfg.SMTP)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	runID, err := newRunID(deps.Now())
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	log = log.With(slog.String("run_id", runID))

	older, newer, err := snapshot.LatestPair(cfg.SnapshotDir)
	if err != nil {
		return nil, err
	}
	log.Info("comparing snapshots",
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
	log.Info("computed novelty set", slog.Int("count", len(novel)))

	out := &RunOutput{
		RunID:      runID,
		Older:      older,
		Newer:      newer,
		NovelCount: len(novel),
	}

	if err := deps.Journal.RecordRun(runID, older, newer, len(novel), deps.Now()); err != nil {
		log.Warn("failed to journal run", slog.Any("error", err))
	}

	if len(novel) == 0 {
		log.Info("no new records, done")
		return out, nil
	}

	groups, skipped := notify.GroupByContact(newerSnap.Records, novel, cfg.Columns)
	for _, s := range skipped {
		log.Warn("skipping record without contact",
			slog.String("key", s.Key), slog.String("reason", s.Reason))
	}
	out.Skipped = len(skipped)

	tmpl := notify.Template{
		From:            cfg.From,
		ReplyTo:         cfg.ReplyTo,
		Subject:         cfg.Subject,
		Body:            cfg.Body,
		HTMLAlternative: cfg.HTMLAlternative,
	}
	dispatcher := notify.NewDispatcher(deps.Transport, cfg.DraftsDir)

	// Contacts are visited in sorted order so log output and journal rows
	// are stable across runs on the same inputs.
	contacts := make([]string, 0, len(groups))
	for c := range groups {
		contacts = append(contacts, c)
	}
	sort.Strings(contacts)

	for _, contact := range contacts {
		items := groups[contact]
		if cfg.Mode == config.ModePerRecord {
			for _, it := range items {
				if err := dispatchOne(ctx, log, deps, dispatcher, out, runID, contact, tmpl, []notify.Item{it}, it.Key); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := dispatchOne(ctx, log, deps, dispatcher, out, runID, contact, tmpl, items, "group"); err != nil {
			return nil, err
		}
	}

	log.Info("run complete",
		slog.Int("sent", out.Sent),
		slog.Int("deferred", out.Deferred),
		slog.Int("skipped", out.Skipped))
	return out, nil
}

// dispatchOne builds and dispatches a single message, updating counters and
// the journal. Build failures (malformed addresses) are treated like a
// missing contact: logged and skipped, never fatal.
func dispatchOne(ctx context.Context, log *slog.Logger, deps RunDeps, dispatcher *notify.Dispatcher, out *RunOutput, runID, contact string, tmpl notify.Template, items []notify.Item, suffix string) error {
	msg, err := notify.BuildMessage(contact, tmpl, items)
	if err != nil {
		log.Warn("skipping undeliverable recipient",
			slog.String("recipient", contact), slog.Any("error", err))
		out.Skipped++
		return nil
	}

	outcome, err := dispatcher.Dispatch(ctx, msg, contact, suffix)
	if err != nil {
		// Both delivery paths failed for this message.
		return err
	}

	switch outcome.Status {
	case notify.StatusSent:
		out.Sent++
		log.Info("email sent",
			slog.String("recipient", contact), slog.Int("items", len(items)))
	case notify.StatusDeferred:
		out.Deferred++
		log.Warn("smtp unavailable, draft saved",
			slog.String("recipient", contact),
			slog.String("reason", outcome.Reason),
			slog.String("draft", outcome.DraftPath))
	}

	if err := deps.Journal.RecordOutcome(runID, contact, string(outcome.Status), outcome.Reason, outcome.DraftPath, deps.Now()); err != nil {
		log.Warn("failed to journal outcome", slog.Any("error", err))
	}
	return nil
}

// newRunID generates a ULID for tagging a run's log lines and journal rows.
func newRunID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
