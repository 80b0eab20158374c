package notify

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/wneessen/go-mail"
	"github.com/yuin/goldmark"
)

// Template carries the static per-run message fields. Subject and Body are
// fixed; only the optional item list varies between messages.
type Template struct {
	From    string
	ReplyTo string
	Subject string
	Body    string

	// HTMLAlternative adds a text/html part rendered from the body,
	// treating the template as markdown.
	HTMLAlternative bool
}

const (
	itemListHeader = "\n\nNew records logged by you since the previous export:\n"
	itemListFooter = "\nWe'll keep you updated in the tracker.\n"
)

// BuildMessage renders one notification message for a recipient. When items
// are supplied and non-empty the body is the template followed by one line
// per item, sorted ascending by identifier regardless of input order. The
// message is immutable once built and is consumed exactly once by Dispatch.
func BuildMessage(to string, tmpl Template, items []Item) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(tmpl.From); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", tmpl.From, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	if tmpl.ReplyTo != "" {
		if err := m.ReplyTo(tmpl.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address %q: %w", tmpl.ReplyTo, err)
		}
	}
	m.Subject(tmpl.Subject)

	body := renderBody(tmpl.Body, items)
	m.SetBodyString(mail.TypeTextPlain, body)

	if tmpl.HTMLAlternative {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(body), &buf); err != nil {
			return nil, fmt.Errorf("failed to render html alternative: %w", err)
		}
		m.AddAlternativeString(mail.TypeTextHTML, buf.String())
	}
	return m, nil
}

// renderBody appends the itemized list to the template body. An empty item
// list leaves the template unmodified.
func renderBody(body string, items []Item) string {
	if len(items) == 0 {
		return body
	}

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	var b strings.Builder
	b.WriteString(body)
	b.WriteString(itemListHeader)
	for _, it := range sorted {
		fmt.Fprintf(&b, "• %s — %s (Created: %s)\n", it.Key, it.Summary, it.Created)
	}
	b.WriteString(itemListFooter)
	return b.String()
}
