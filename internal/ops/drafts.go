package ops

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmleung/deltamail/internal/config"
	"github.com/jmleung/deltamail/internal/errors"
)

// DraftInfo describes one pending draft file.
type DraftInfo struct {
	Name       string `json:"name"`
	Recipient  string `json:"recipient"` // sanitized token from the file name, suffix included
	Size       int64  `json:"size"`
	ModifiedAt int64  `json:"modified_at"`
}

// DraftsOutput lists the fallback directory's contents.
type DraftsOutput struct {
	Dir   string      `json:"dir"`
	Items []DraftInfo `json:"items"`
}

// Drafts lists pending .eml drafts in the fallback directory, sorted by file
// name (which sorts by write time, given the timestamped naming scheme). A
// missing directory means no run has deferred anything yet and yields an
// empty listing.
func Drafts(cfg *config.Config) (*DraftsOutput, error) {
	out := &DraftsOutput{Dir: cfg.DraftsDir, Items: []DraftInfo{}}

	entries, err := os.ReadDir(cfg.DraftsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, errors.NewInternal(err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".eml") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out.Items = append(out.Items, DraftInfo{
			Name:       e.Name(),
			Recipient:  recipientToken(e.Name()),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().Unix(),
		})
	}

	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].Name < out.Items[j].Name })
	return out, nil
}

// recipientToken extracts the sanitized recipient (plus any suffix) from a
// draft file name of the form draft_<date>_<time>_<micros>_<recipient...>.eml.
func recipientToken(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.SplitN(base, "_", 5)
	if len(parts) < 5 {
		return ""
	}
	return parts[4]
}
