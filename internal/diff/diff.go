package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	RowUnchanged = "unchanged"
	RowAdded     = "added"
	RowRemoved   = "removed"
	RowChanged   = "changed"
)

// Row is one aligned line of a before/after comparison. Line numbers are
// 1-based; a zero OldLine means the row has no old side (added), a zero
// NewLine means no new side (removed).
type Row struct {
	Type    string `json:"type"`
	OldText string `json:"old_text"`
	NewText string `json:"new_text"`
	OldLine int    `json:"old_line,omitempty"`
	NewLine int    `json:"new_line,omitempty"`
}

type Result struct {
	Rows []Row `json:"rows"`
}

// Compute aligns before and after line by line. A removed run immediately
// followed by an added run is paired positionally into changed rows; excess
// lines on the longer side stay removed or added.
func Compute(before, after string) Result {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(joinLines(before), joinLines(after))
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var rows []Row
	oldLine := 1
	newLine := 1
	var pendingRemoved []string

	flushRemoved := func() {
		for _, text := range pendingRemoved {
			rows = append(rows, Row{Type: RowRemoved, OldText: text, OldLine: oldLine})
			oldLine++
		}
		pendingRemoved = nil
	}

	for _, d := range diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flushRemoved()
			for _, line := range lines {
				rows = append(rows, Row{Type: RowUnchanged, OldText: line, NewText: line, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			}
		case diffmatchpatch.DiffDelete:
			flushRemoved()
			pendingRemoved = lines
		case diffmatchpatch.DiffInsert:
			paired := len(pendingRemoved)
			if len(lines) < paired {
				paired = len(lines)
			}
			for i := 0; i < paired; i++ {
				rows = append(rows, Row{
					Type:    RowChanged,
					OldText: pendingRemoved[i],
					NewText: lines[i],
					OldLine: oldLine,
					NewLine: newLine,
				})
				oldLine++
				newLine++
			}
			for _, text := range pendingRemoved[paired:] {
				rows = append(rows, Row{Type: RowRemoved, OldText: text, OldLine: oldLine})
				oldLine++
			}
			pendingRemoved = nil
			for _, text := range lines[paired:] {
				rows = append(rows, Row{Type: RowAdded, NewText: text, NewLine: newLine})
				newLine++
			}
		}
	}
	flushRemoved()
	return Result{Rows: rows}
}

const MaxLines = 5000

// ComputeWithLimit refuses comparisons whose combined size exceeds maxLines
// (MaxLines when zero). The second return reports whether the diff was
// skipped.
func ComputeWithLimit(before, after string, maxLines int) (Result, bool) {
	if maxLines <= 0 {
		maxLines = MaxLines
	}
	if lineCount(before)+lineCount(after) > maxLines {
		return Result{}, true
	}
	return Compute(before, after), false
}

// HasChanges reports whether any row is not an unchanged row.
func (r Result) HasChanges() bool {
	for _, row := range r.Rows {
		if row.Type != RowUnchanged {
			return true
		}
	}
	return false
}

// OldLines reconstructs the old side of the comparison.
func (r Result) OldLines() []string {
	var lines []string
	for _, row := range r.Rows {
		if row.OldLine > 0 {
			lines = append(lines, row.OldText)
		}
	}
	return lines
}

// NewLines reconstructs the new side of the comparison.
func (r Result) NewLines() []string {
	var lines []string
	for _, row := range r.Rows {
		if row.NewLine > 0 {
			lines = append(lines, row.NewText)
		}
	}
	return lines
}

// joinLines re-joins the split lines with a uniform trailing newline so a
// text that differs only in its final newline tokenizes identically to its
// counterpart. Line tokens otherwise carry the newline, and the last line
// would diff against itself.
func joinLines(value string) string {
	lines := splitLines(value)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// splitLines splits on newline without producing a phantom empty line for a
// trailing newline.
func splitLines(value string) []string {
	lines := strings.Split(value, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func lineCount(value string) int {
	if value == "" {
		return 0
	}
	return strings.Count(value, "\n") + 1
}
