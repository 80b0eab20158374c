// Package notify turns novel records into notification messages and
// delivers them, falling back to on-disk drafts when the transport is down.
package notify

import (
	"github.com/jmleung/deltamail/internal/config"
	"github.com/jmleung/deltamail/internal/diff"
	"github.com/jmleung/deltamail/internal/snapshot"
)

// Item is one novel record attributed to a contact.
type Item struct {
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Created  string `json:"created"`
	Reporter string `json:"reporter"` // display name, from the fallback contact column
}

// ContactGroup maps a resolved contact address to the novel records
// attributed to it, in discovery order.
type ContactGroup map[string][]Item

// SkipDiagnostic reports a record that could not be attributed to any
// contact. Non-fatal; the run continues without it.
type SkipDiagnostic struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// GroupByContact partitions the novel records of a snapshot by recipient.
// The contact is the trimmed reporter-email column, falling back to the
// trimmed reporter column when empty. Records with neither are skipped and
// reported in the returned diagnostics.
func GroupByContact(records []snapshot.Record, novel diff.Set, cols config.Columns) (ContactGroup, []SkipDiagnostic) {
	groups := make(ContactGroup)
	var skipped []SkipDiagnostic

	for _, r := range records {
		key := r.Get(cols.Key)
		if key == "" || !novel.Has(key) {
			continue
		}

		contact := r.Get(cols.Email)
		if contact == "" {
			contact = r.Get(cols.Reporter)
		}
		if contact == "" {
			skipped = append(skipped, SkipDiagnostic{Key: key, Reason: "no reporter contact"})
			continue
		}

		groups[contact] = append(groups[contact], Item{
			Key:      key,
			Summary:  r.Get(cols.Summary),
			Created:  r.Get(cols.Created),
			Reporter: r.Get(cols.Reporter),
		})
	}
	return groups, skipped
}
