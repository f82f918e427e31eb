package diff

import (
	"strings"
	"testing"
)

func splitlines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func TestComputeNoOp(t *testing.T) {
	text := "alpha\nbeta\ngamma\n"
	result := Compute(text, text)
	if len(result.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Rows))
	}
	for i, row := range result.Rows {
		if row.Type != RowUnchanged {
			t.Fatalf("row %d: expected unchanged, got %s", i, row.Type)
		}
		if row.OldLine != i+1 || row.NewLine != i+1 {
			t.Fatalf("row %d: unexpected line numbers %d/%d", i, row.OldLine, row.NewLine)
		}
	}
	if result.HasChanges() {
		t.Fatalf("no-op diff must report no changes")
	}
}

func TestComputeTrailingNewlineOnly(t *testing.T) {
	for _, pair := range [][2]string{
		{"alpha\nbeta", "alpha\nbeta\n"},
		{"alpha\nbeta\n", "alpha\nbeta"},
	} {
		result := Compute(pair[0], pair[1])
		if len(result.Rows) != 2 {
			t.Fatalf("Compute(%q, %q): expected 2 rows, got %d", pair[0], pair[1], len(result.Rows))
		}
		for i, row := range result.Rows {
			if row.Type != RowUnchanged {
				t.Fatalf("Compute(%q, %q) row %d: expected unchanged, got %s", pair[0], pair[1], i, row.Type)
			}
		}
		if result.HasChanges() {
			t.Fatalf("Compute(%q, %q) must report no changes", pair[0], pair[1])
		}
	}
}

func TestComputeReplacePairsChangedRows(t *testing.T) {
	before := "alpha\nbeta\ngamma\n"
	after := "alpha\ndelta\ngamma\n"
	result := Compute(before, after)
	var changed []Row
	for _, row := range result.Rows {
		if row.Type == RowChanged {
			changed = append(changed, row)
		}
	}
	if len(changed) != 1 {
		t.Fatalf("expected one changed row, got %d: %+v", len(changed), result.Rows)
	}
	if changed[0].OldText != "beta" || changed[0].NewText != "delta" {
		t.Fatalf("unexpected changed pairing %+v", changed[0])
	}
	if changed[0].OldLine != 2 || changed[0].NewLine != 2 {
		t.Fatalf("unexpected line numbers %+v", changed[0])
	}
}

func TestComputeInsertOnly(t *testing.T) {
	before := "alpha\ngamma\n"
	after := "alpha\nbeta\ngamma\n"
	result := Compute(before, after)
	added := 0
	for _, row := range result.Rows {
		switch row.Type {
		case RowAdded:
			added++
			if row.NewText != "beta" || row.NewLine != 2 || row.OldLine != 0 {
				t.Fatalf("unexpected added row %+v", row)
			}
		case RowRemoved, RowChanged:
			t.Fatalf("unexpected %s row in pure insert: %+v", row.Type, row)
		}
	}
	if added != 1 {
		t.Fatalf("expected one added row, got %d", added)
	}
}

func TestComputeDeleteOnly(t *testing.T) {
	before := "alpha\nbeta\ngamma\n"
	after := "alpha\ngamma\n"
	result := Compute(before, after)
	removed := 0
	for _, row := range result.Rows {
		switch row.Type {
		case RowRemoved:
			removed++
			if row.OldText != "beta" || row.OldLine != 2 || row.NewLine != 0 {
				t.Fatalf("unexpected removed row %+v", row)
			}
		case RowAdded, RowChanged:
			t.Fatalf("unexpected %s row in pure delete: %+v", row.Type, row)
		}
	}
	if removed != 1 {
		t.Fatalf("expected one removed row, got %d", removed)
	}
}

func TestComputeUnevenReplace(t *testing.T) {
	before := "keep\none\ntwo\nthree\nkeep2\n"
	after := "keep\nONE\nkeep2\n"
	result := Compute(before, after)
	var changed, removed int
	for _, row := range result.Rows {
		switch row.Type {
		case RowChanged:
			changed++
		case RowRemoved:
			removed++
		}
	}
	if changed != 1 {
		t.Fatalf("expected 1 changed row, got %d: %+v", changed, result.Rows)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed rows, got %d: %+v", removed, result.Rows)
	}
}

func TestComputeReconstruction(t *testing.T) {
	cases := [][2]string{
		{"", ""},
		{"a\nb\nc\n", "a\nx\nc\n"},
		{"a\nb\n", ""},
		{"", "x\ny\n"},
		{"one\ntwo\nthree", "one\nthree\nfour"},
		{"last no newline", "last no newline\nextra"},
	}
	for _, pair := range cases {
		before, after := pair[0], pair[1]
		result := Compute(before, after)
		old := result.OldLines()
		expectedOld := splitlines(before)
		if strings.Join(old, "\n") != strings.Join(expectedOld, "\n") {
			t.Fatalf("old side mismatch for %q → %q: got %v", before, after, old)
		}
		updated := result.NewLines()
		expectedNew := splitlines(after)
		if strings.Join(updated, "\n") != strings.Join(expectedNew, "\n") {
			t.Fatalf("new side mismatch for %q → %q: got %v", before, after, updated)
		}
	}
}

func TestComputeLineNumbersMonotonic(t *testing.T) {
	before := "a\nb\nc\nd\n"
	after := "a\nX\nc\nY\nd\n"
	result := Compute(before, after)
	lastOld, lastNew := 0, 0
	for _, row := range result.Rows {
		if row.OldLine > 0 {
			if row.OldLine != lastOld+1 {
				t.Fatalf("old line numbers not sequential: %+v", result.Rows)
			}
			lastOld = row.OldLine
		}
		if row.NewLine > 0 {
			if row.NewLine != lastNew+1 {
				t.Fatalf("new line numbers not sequential: %+v", result.Rows)
			}
			lastNew = row.NewLine
		}
	}
	if lastOld != 4 || lastNew != 5 {
		t.Fatalf("expected 4 old and 5 new lines, got %d/%d", lastOld, lastNew)
	}
}

func TestComputeWithLimit(t *testing.T) {
	before := strings.Repeat("line\n", 10)
	after := before + "tail\n"
	result, skipped := ComputeWithLimit(before, after, 5)
	if !skipped {
		t.Fatalf("expected oversized diff to be skipped")
	}
	if len(result.Rows) != 0 {
		t.Fatalf("expected empty result when skipped")
	}
	result, skipped = ComputeWithLimit(before, after, 0)
	if skipped {
		t.Fatalf("did not expect skip under default limit")
	}
	if len(result.Rows) == 0 {
		t.Fatalf("expected rows under default limit")
	}
}
