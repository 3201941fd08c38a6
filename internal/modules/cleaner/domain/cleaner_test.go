package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mailsort/internal/modules/cleaner/domain"
)

func TestCleanTextStripsMarkupAndContacts(t *testing.T) {
	t.Parallel()
	in := `<html><head><style>p { color: red; }</style></head><body>` +
		`<p>Hello&nbsp;there!!!</p><script>alert("x")</script>` +
		`<p>Visit <a href="https://x.io/a">https://x.io/a</a> or www.y.com</p>` +
		`<p>Mail bob@x.org or call 555-123-4567...</p>` +
		`<p>Sent from my iPhone</p></body></html>`
	require.Equal(t, "Hello there!\nVisit link or link\nMail email or call phone.", domain.CleanText(in))
}

func TestCleanTextPlainInput(t *testing.T) {
	t.Parallel()
	in := "Tom &amp; Jerry  said “hi” — twice??\r\n\r\n--\r\nAll rights reserved\nＦｕｌｌ width,,, ok"
	require.Equal(t, "Tom & Jerry said \"hi\" - twice?\nFull width, ok", domain.CleanText(in))
	require.Equal(t, "", domain.CleanText("   "))
}

func TestCleanSubject(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"RE: FW: Meeting notes": "Meeting notes",
		"Fwd:Invoice <b>42</b>": "Invoice 42",
		"Reminder: pay rent":    "Reminder: pay rent",
		"":                      domain.DefaultSubject,
		"re:   ":                domain.DefaultSubject,
	}
	for in, want := range tests {
		require.Equal(t, want, domain.CleanSubject(in), in)
	}
}

func TestCleanSender(t *testing.T) {
	t.Parallel()
	require.Equal(t, "jane@example.com", domain.CleanSender("Jane Doe <jane@example.com>"))
	require.Equal(t, "bob@example.com", domain.CleanSender(" bob@example.com "))
	require.Equal(t, "Newsletter Team", domain.CleanSender("Newsletter Team"))
	require.Equal(t, domain.DefaultSender, domain.CleanSender(""))
}
