package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// row is one line of a ranked listing.
type row struct {
	Label string
	Count int64  // shown with thousands separators when positive
	Note  string // free text after the count, such as a relative time
}

// printRows writes rows as numbered, column-aligned lines. The label column
// is measured in display columns and capped at maxLabel.
func printRows(w io.Writer, rows []row, countUnit string) {
	const maxLabel = 48

	labelWidth := 0
	for _, r := range rows {
		labelWidth = max(labelWidth, runewidth.StringWidth(r.Label))
	}
	labelWidth = min(labelWidth, maxLabel)
	rankWidth := len(fmt.Sprint(len(rows)))

	for i, r := range rows {
		var b strings.Builder
		fmt.Fprintf(&b, "%*d. %s", rankWidth, i+1, padToWidth(r.Label, labelWidth))
		if r.Count > 0 {
			fmt.Fprintf(&b, "  %s %s", humanize.Comma(r.Count), countUnit)
		}
		if r.Note != "" {
			b.WriteString("  " + r.Note)
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

// printFields writes label/value pairs with aligned values, skipping empty
// values.
func printFields(w io.Writer, pairs ...string) {
	width := 0
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			width = max(width, runewidth.StringWidth(pairs[i]))
		}
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", runewidth.FillRight(pairs[i]+":", width+1), pairs[i+1])
	}
}

// count formats n with thousands separators, or "" for zero.
func count(n int64) string {
	if n <= 0 {
		return ""
	}
	return humanize.Comma(n)
}

// ago formats t relative to now, or "" for the zero time.
func ago(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// summary trims Last.fm's trailing "Read more" link from wiki text and
// keeps the first paragraph.
func summary(s string) string {
	if i := strings.Index(s, "<a href"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	const ellipsis = "..."
	currentWidth := runewidth.StringWidth(text)

	switch {
	case currentWidth > width:
		if width <= len(ellipsis) {
			return runewidth.Truncate(ellipsis, width, "")
		}
		truncated := runewidth.Truncate(text, width-len(ellipsis), "") + ellipsis
		// Wide runes can leave the result a column short.
		return runewidth.FillRight(truncated, width)
	case currentWidth < width:
		return runewidth.FillRight(text, width)
	}
	return text
}
