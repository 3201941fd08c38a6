package domain

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultSubject = "No Subject"
	DefaultSender  = "Unknown Sender"
)

var (
	cssComment   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	leftoverTag  = regexp.MustCompile(`<[^>]+>`)
	httpURL      = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+")
	wwwURL       = regexp.MustCompile("www\\.[^\\s<>\"{}|\\\\^`\\[\\]]+")
	emailAddress = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	phoneNumber  = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	bbLink       = regexp.MustCompile(`(?i)\[link\].*?\[/link\]`)
	spaces       = regexp.MustCompile(`[ \t\f\v]+`)
	bangs        = regexp.MustCompile(`!{2,}`)
	questions    = regexp.MustCompile(`\?{2,}`)
	dots         = regexp.MustCompile(`\.{2,}`)
	commas       = regexp.MustCompile(`,{2,}`)
	replyPrefix  = regexp.MustCompile(`(?i)^\s*(re|fwd|fw)\s*:\s*`)
	angleAddress = regexp.MustCompile(`<([^>]+)>`)

	signatureLines = []*regexp.Regexp{
		regexp.MustCompile(`^\s*--\s*$`),
		regexp.MustCompile(`(?i)sent from my (iphone|android)`),
		regexp.MustCompile(`(?i)get outlook for (ios|android)`),
		regexp.MustCompile(`(?i)this email was sent from a notification-only address`),
		regexp.MustCompile(`(?i)please do not reply to this email`),
		regexp.MustCompile(`(?i)(click here )?to unsubscribe`),
		regexp.MustCompile(`(?i)if you received this email in error`),
		regexp.MustCompile(`(?i)this is an automated message`),
		regexp.MustCompile(`(?i)powered by`),
		regexp.MustCompile(`©\s*\d{4}`),
		regexp.MustCompile(`(?i)all rights reserved`),
		regexp.MustCompile(`(?i)confidentiality notice`),
		regexp.MustCompile(`(?i)this message is intended only for`),
		regexp.MustCompile(`(?i)if you are not the intended recipient`),
	}

	typography = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
		"—", "-", "–", "-",
	)

	blockTags = map[string]bool{
		"br": true, "p": true, "div": true, "tr": true, "li": true, "table": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	}
)

// CleanText reduces an email body to plain text for labeling: markup and
// entities are removed, links, addresses and phone numbers are replaced by
// placeholder words, and footer lines are dropped.
func CleanText(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = stripMarkup(text)
	text = cssComment.ReplaceAllString(text, "")
	text = replaceContacts(text)
	text = dropSignatures(text)
	text = normalizeWhitespace(text)
	text = collapsePunctuation(text)
	text = typography.Replace(norm.NFKC.String(text))
	return strings.TrimSpace(text)
}

func CleanSubject(subject string) string {
	for {
		stripped := replyPrefix.ReplaceAllString(subject, "")
		if stripped == subject {
			break
		}
		subject = stripped
	}
	subject = strings.Join(strings.Fields(CleanText(subject)), " ")
	if subject == "" {
		return DefaultSubject
	}
	return subject
}

func CleanSender(sender string) string {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return DefaultSender
	}
	if m := angleAddress.FindStringSubmatch(sender); m != nil {
		return strings.TrimSpace(m[1])
	}
	return sender
}

// stripMarkup walks the HTML token stream, keeping text outside script and
// style elements. Entities are decoded by the tokenizer.
func stripMarkup(text string) string {
	z := html.NewTokenizer(strings.NewReader(text))
	var (
		b    strings.Builder
		skip int
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return leftoverTag.ReplaceAllString(b.String(), " ")
			}
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && tt == html.StartTagToken {
				skip++
				continue
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if skip > 0 {
					skip--
				}
				continue
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
	}
}

func replaceContacts(text string) string {
	text = bbLink.ReplaceAllString(text, "link")
	text = httpURL.ReplaceAllString(text, "link")
	text = wwwURL.ReplaceAllString(text, "link")
	text = emailAddress.ReplaceAllString(text, "email")
	return phoneNumber.ReplaceAllString(text, "phone")
}

func dropSignatures(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		signature := false
		for _, p := range signatureLines {
			if p.MatchString(line) {
				signature = true
				break
			}
		}
		if !signature {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spaces.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func collapsePunctuation(text string) string {
	text = bangs.ReplaceAllString(text, "!")
	text = questions.ReplaceAllString(text, "?")
	text = dots.ReplaceAllString(text, ".")
	return commas.ReplaceAllString(text, ",")
}
