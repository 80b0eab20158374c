// Package snapshot loads dated CSV exports and locates the two most recent
// ones in a directory.
package snapshot

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jmleung/deltamail/internal/errors"
)

// Record is one row of a snapshot, keyed by header name. Fields absent from
// a row are simply missing from the map; Get treats them as empty.
type Record map[string]string

// Get returns the trimmed value of a field, or "" when absent.
func (r Record) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Snapshot is one loaded export file. Immutable once loaded.
type Snapshot struct {
	Path    string
	Records []Record
}

// Load parses the CSV file at path into a Snapshot, preserving row order.
// A UTF-8 byte-order marker at the start of the file is tolerated. The first
// row is the header; rows with fewer columns than the header leave the
// remaining fields empty, rows with extra columns have the extras dropped.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewSnapshotRead(path, err)
	}
	defer f.Close()

	// UTF8BOM's decoder strips a leading BOM and passes everything else
	// through untouched.
	reader := csv.NewReader(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.NewSnapshotRead(path, io.ErrUnexpectedEOF)
		}
		return nil, errors.NewSnapshotRead(path, err)
	}

	snap := &Snapshot{Path: path}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewSnapshotRead(path, err)
		}

		rec := make(Record, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = row[i]
			} else {
				rec[name] = ""
			}
		}
		snap.Records = append(snap.Records, rec)
	}
	return snap, nil
}
