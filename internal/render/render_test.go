package render

import (
	"strings"
	"testing"

	"promptdesk/engine/internal/diff"
)

func TestMarkdownRendersHeadings(t *testing.T) {
	out, err := Markdown("# Заголовок\n\nтекст")
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Заголовок") {
		t.Fatalf("expected rendered heading, got %q", out)
	}
}

func TestPlainEscapesAndBreaks(t *testing.T) {
	out := Plain("a < b\nстрока")
	if !strings.Contains(out, "a &lt; b") {
		t.Fatalf("expected escaping, got %q", out)
	}
	if !strings.Contains(out, "<br>") {
		t.Fatalf("expected line breaks, got %q", out)
	}
}

func TestDiffTableMarksChanges(t *testing.T) {
	result := diff.Compute("a\nb\nc\n", "a\nX\nc\nd\n")
	out := DiffTable(result, 0, "Было", "Стало")
	if !strings.Contains(out, "diff_chg") {
		t.Fatalf("expected changed cell, got %q", out)
	}
	if !strings.Contains(out, "diff_add") {
		t.Fatalf("expected added cell, got %q", out)
	}
	if !strings.Contains(out, "Было") || !strings.Contains(out, "Стало") {
		t.Fatalf("expected headers, got %q", out)
	}
}

func TestDiffTableEscapesContent(t *testing.T) {
	result := diff.Compute("<script>\n", "<b>\n")
	out := DiffTable(result, 0, "old", "new")
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected content escaped, got %q", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("expected escaped script tag, got %q", out)
	}
}

func TestDiffTableCollapsesLongEqualRuns(t *testing.T) {
	var before, after strings.Builder
	for i := 0; i < 30; i++ {
		before.WriteString("same line\n")
		after.WriteString("same line\n")
	}
	before.WriteString("old tail\n")
	after.WriteString("new tail\n")
	result := diff.Compute(before.String(), after.String())
	out := DiffTable(result, 3, "old", "new")
	if !strings.Contains(out, "diff_next") {
		t.Fatalf("expected collapsed run marker, got %q", out)
	}
	// Only the 3 context lines before the change survive out of 30.
	if got := strings.Count(out, "same line"); got > 8 {
		t.Fatalf("expected collapsed context, got %d occurrences", got)
	}
}

func TestDiffTableNoChangesShowsEverything(t *testing.T) {
	text := strings.Repeat("line\n", 20)
	result := diff.Compute(text, text)
	out := DiffTable(result, 3, "old", "new")
	if strings.Contains(out, "diff_next") {
		t.Fatalf("expected no collapsing without changes")
	}
	if got := strings.Count(out, "<tr>"); got != 21 {
		t.Fatalf("expected 21 table rows, got %d", got)
	}
}
