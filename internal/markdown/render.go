// Package markdown converts AI tutor output into HTML fragments.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule order matters: line-level rules (headings, blockquotes, list items) must
// run before span rules touch the line bodies, and list wrapping must run after
// the individual items have been converted. Render is not idempotent; feeding
// its own output back in will corrupt the markup.
var (
	h3Regex         = regexp.MustCompile(`(?m)^### (.+)$`)
	h2Regex         = regexp.MustCompile(`(?m)^## (.+)$`)
	h1Regex         = regexp.MustCompile(`(?m)^# (.+)$`)
	boldRegex       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRegex     = regexp.MustCompile(`\*(.+?)\*`)
	fencedRegex     = regexp.MustCompile("(?s)```\n?(.*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`\n]+)`")
	blockquoteRegex = regexp.MustCompile(`(?m)^&gt; (.+)$`)
	bulletRegex     = regexp.MustCompile(`(?m)^[-*] (.+)$`)
	orderedRegex    = regexp.MustCompile(`(?m)^\d+\. (.+)$`)
	linkRegex       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	tableRowRegex   = regexp.MustCompile(`(?m)^\|(.+)\|$`)
)

// Render converts raw message text to an HTML fragment. It is pure and total:
// any input yields some output, and the same input always yields the same
// fragment. Raw text is entity-escaped before any markup rule runs, so source
// angle brackets can never smuggle markup into the result.
func Render(text string) string {
	out := escape(text)

	out = h3Regex.ReplaceAllString(out, "<h3>$1</h3>")
	out = h2Regex.ReplaceAllString(out, "<h2>$1</h2>")
	out = h1Regex.ReplaceAllString(out, "<h1>$1</h1>")

	out = boldRegex.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRegex.ReplaceAllString(out, "<em>$1</em>")

	out = fencedRegex.ReplaceAllStringFunc(out, func(m string) string {
		body := fencedRegex.FindStringSubmatch(m)[1]
		return "<pre><code>" + strings.TrimSuffix(body, "\n") + "</code></pre>"
	})
	out = inlineCodeRegex.ReplaceAllString(out, "<code>$1</code>")

	out = blockquoteRegex.ReplaceAllString(out, "<blockquote>$1</blockquote>")

	out = bulletRegex.ReplaceAllString(out, "<li>$1</li>")
	out = wrapListRuns(out, "ul")
	out = orderedRegex.ReplaceAllString(out, "<li>$1</li>")
	out = wrapListRuns(out, "ol")

	out = linkRegex.ReplaceAllString(out,
		`<a href="$2" target="_blank" rel="noopener noreferrer">$1</a>`)

	out = tableRowRegex.ReplaceAllStringFunc(out, func(m string) string {
		cells := strings.Split(strings.Trim(m, "|"), "|")
		var row strings.Builder
		row.WriteString("<tr>")
		for _, cell := range cells {
			row.WriteString("<td>")
			row.WriteString(strings.TrimSpace(cell))
			row.WriteString("</td>")
		}
		row.WriteString("</tr>")
		return row.String()
	})

	return breakLines(out)
}

// escape neutralizes HTML-significant characters in the source text.
// Ampersand must go first so later entities are not double-escaped.
func escape(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

// wrapListRuns wraps consecutive <li> lines into a single list container.
// It only touches bare items; items already inside a container from an
// earlier rule pass are left alone.
func wrapListRuns(text, tag string) string {
	lines := strings.Split(text, "\n")
	var out []string
	var run []string

	flush := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, fmt.Sprintf("<%s>%s</%s>", tag, strings.Join(run, ""), tag))
		run = nil
	}

	inContainer := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "<ul>") || strings.HasPrefix(trimmed, "<ol>"):
			// A container that closes on the same line is not entered.
			if !strings.HasSuffix(trimmed, "</ul>") && !strings.HasSuffix(trimmed, "</ol>") {
				inContainer = true
			}
			flush()
			out = append(out, line)
		case strings.HasPrefix(trimmed, "</ul>") || strings.HasPrefix(trimmed, "</ol>"):
			inContainer = false
			out = append(out, line)
		case !inContainer && strings.HasPrefix(trimmed, "<li>") && strings.HasSuffix(trimmed, "</li>"):
			run = append(run, trimmed)
		default:
			flush()
			out = append(out, line)
		}
	}
	flush()

	return strings.Join(out, "\n")
}

// breakLines converts remaining newlines to explicit <br> tags, leaving the
// contents of <pre> blocks untouched. Newlines consumed by block rules (list
// wrapping) are already gone by the time this runs.
func breakLines(text string) string {
	var b strings.Builder
	rest := text
	for {
		start := strings.Index(rest, "<pre>")
		if start < 0 {
			b.WriteString(strings.ReplaceAll(rest, "\n", "<br>"))
			return b.String()
		}
		end := strings.Index(rest[start:], "</pre>")
		if end < 0 {
			b.WriteString(strings.ReplaceAll(rest, "\n", "<br>"))
			return b.String()
		}
		end += start + len("</pre>")

		b.WriteString(strings.ReplaceAll(rest[:start], "\n", "<br>"))
		b.WriteString(rest[start:end])
		rest = rest[end:]
	}
}
