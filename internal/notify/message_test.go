package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var testTemplate = Template{
	From:    "no-reply@example.com",
	ReplyTo: "helpdesk@example.com",
	Subject: "Intake confirmation",
	Body:    "Hello,\n\nWe received your request.\n",
}

func TestRenderBody_NoItems(t *testing.T) {
	if got := renderBody(testTemplate.Body, nil); got != testTemplate.Body {
		t.Errorf("renderBody with no items must return the template unmodified, got %q", got)
	}
	if got := renderBody(testTemplate.Body, []Item{}); got != testTemplate.Body {
		t.Errorf("renderBody with empty items must return the template unmodified, got %q", got)
	}
}

func TestRenderBody_ItemsSortedByKey(t *testing.T) {
	items := []Item{
		{Key: "A-9", Summary: "Ninth", Created: "2024-01-09"},
		{Key: "A-10", Summary: "Tenth", Created: "2024-01-10"},
		{Key: "A-2", Summary: "Second", Created: "2024-01-02"},
	}

	body := renderBody(testTemplate.Body, items)
	require.True(t, strings.HasPrefix(body, testTemplate.Body))

	// Lexicographic ascending by identifier, independent of input order.
	iA10 := strings.Index(body, "A-10 — Tenth")
	iA2 := strings.Index(body, "A-2 — Second")
	iA9 := strings.Index(body, "A-9 — Ninth")
	require.NotEqual(t, -1, iA10)
	require.NotEqual(t, -1, iA2)
	require.NotEqual(t, -1, iA9)
	require.Less(t, iA10, iA2)
	require.Less(t, iA2, iA9)

	require.Contains(t, body, "(Created: 2024-01-02)")
	require.Contains(t, body, itemListFooter)
}

func TestRenderBody_DoesNotMutateInput(t *testing.T) {
	items := []Item{{Key: "B-2"}, {Key: "A-1"}}
	renderBody(testTemplate.Body, items)
	if items[0].Key != "B-2" || items[1].Key != "A-1" {
		t.Errorf("renderBody must not reorder the caller's slice, got %v", items)
	}
}

func TestBuildMessage_Headers(t *testing.T) {
	msg, err := BuildMessage("alice@x.com", testTemplate, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	require.Contains(t, raw, "From: <no-reply@example.com>")
	require.Contains(t, raw, "To: <alice@x.com>")
	require.Contains(t, raw, "Reply-To: <helpdesk@example.com>")
	require.Contains(t, raw, "Subject: Intake confirmation")
}

func TestBuildMessage_NoReplyTo(t *testing.T) {
	tmpl := testTemplate
	tmpl.ReplyTo = ""

	msg, err := BuildMessage("alice@x.com", tmpl, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	require.NotContains(t, buf.String(), "Reply-To:")
}

func TestBuildMessage_InvalidAddresses(t *testing.T) {
	_, err := BuildMessage("not an address", testTemplate, nil)
	require.Error(t, err)

	tmpl := testTemplate
	tmpl.From = "also not an address"
	_, err = BuildMessage("alice@x.com", tmpl, nil)
	require.Error(t, err)
}

func TestBuildMessage_HTMLAlternative(t *testing.T) {
	tmpl := testTemplate
	tmpl.HTMLAlternative = true

	msg, err := BuildMessage("alice@x.com", tmpl, []Item{{Key: "A-1", Summary: "One"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	require.Contains(t, raw, "text/plain")
	require.Contains(t, raw, "text/html")
}

func TestBuildMessage_PlainOnlyByDefault(t *testing.T) {
	msg, err := BuildMessage("alice@x.com", testTemplate, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	require.NotContains(t, buf.String(), "text/html")
}
