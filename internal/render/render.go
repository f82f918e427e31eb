// Package render turns documents and diffs into displayable HTML for the
// host UI. Core types never depend on this package.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"promptdesk/engine/internal/diff"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Markdown renders document text as a markdown preview.
func Markdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Plain renders document text verbatim: escaped, with line breaks kept.
// Used for documents that are not authored as markdown.
func Plain(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}

const diffStyle = `<style>
table.diff {font-family: monospace; font-size: 13px; border-collapse: collapse; width: 100%;}
.diff_header {background: #f3f4f6; padding: 4px;}
.diff_next {background: #e5e7eb; text-align: center;}
.diff_add {background: #e6ffed;}
.diff_chg {background: #fff5b1;}
.diff_sub {background: #ffeef0;}
td, th {padding: 2px 4px; border: 1px solid #e5e7eb;}
</style>
`

// DiffTable renders diff rows as a two-sided table with line-number
// gutters: old text on the left, new on the right, green for added, yellow
// for changed, red for removed. Unchanged runs are collapsed to context
// lines around each change; longer runs are replaced by a skip row.
// context <= 0 shows everything.
func DiffTable(result diff.Result, context int, fromLabel, toLabel string) string {
	var b strings.Builder
	b.WriteString(diffStyle)
	b.WriteString(`<table class="diff">`)
	fmt.Fprintf(&b, `<tr><th class="diff_header" colspan="2">%s</th><th class="diff_header" colspan="2">%s</th></tr>`,
		html.EscapeString(fromLabel), html.EscapeString(toLabel))

	visible := visibleRows(result.Rows, context)
	skipping := false
	for i, row := range result.Rows {
		if !visible[i] {
			if !skipping {
				b.WriteString(`<tr><td class="diff_next" colspan="4">⋯</td></tr>`)
				skipping = true
			}
			continue
		}
		skipping = false
		writeRow(&b, row)
	}
	b.WriteString(`</table>`)
	return b.String()
}

func writeRow(b *strings.Builder, row diff.Row) {
	oldNum, newNum := "", ""
	if row.OldLine > 0 {
		oldNum = fmt.Sprint(row.OldLine)
	}
	if row.NewLine > 0 {
		newNum = fmt.Sprint(row.NewLine)
	}
	oldClass, newClass := "", ""
	switch row.Type {
	case diff.RowAdded:
		newClass = "diff_add"
	case diff.RowRemoved:
		oldClass = "diff_sub"
	case diff.RowChanged:
		oldClass = "diff_chg"
		newClass = "diff_chg"
	}
	oldText := ""
	if row.OldLine > 0 {
		oldText = html.EscapeString(row.OldText)
	}
	newText := ""
	if row.NewLine > 0 {
		newText = html.EscapeString(row.NewText)
	}
	fmt.Fprintf(b, `<tr><td>%s</td><td%s>%s</td><td>%s</td><td%s>%s</td></tr>`,
		oldNum, classAttr(oldClass), oldText, newNum, classAttr(newClass), newText)
}

func classAttr(class string) string {
	if class == "" {
		return ""
	}
	return ` class="` + class + `"`
}

// visibleRows marks changed rows plus a window of context lines around
// them. With no changes nothing is collapsed: the full document stays
// visible.
func visibleRows(rows []diff.Row, context int) []bool {
	visible := make([]bool, len(rows))
	if context <= 0 {
		for i := range visible {
			visible[i] = true
		}
		return visible
	}
	anyChange := false
	for i, row := range rows {
		if row.Type == diff.RowUnchanged {
			continue
		}
		anyChange = true
		lo := i - context
		if lo < 0 {
			lo = 0
		}
		hi := i + context
		if hi > len(rows)-1 {
			hi = len(rows) - 1
		}
		for j := lo; j <= hi; j++ {
			visible[j] = true
		}
	}
	if !anyChange {
		for i := range visible {
			visible[i] = true
		}
	}
	return visible
}
