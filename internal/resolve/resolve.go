// Package resolve maps reference queries extracted from document text to
// file names from a directory listing. Both operations are pure functions
// of the query and the listing; callers re-list the directory on every call
// so a resolution is never stale.
package resolve

import (
	"regexp"
	"strings"

	"promptdesk/engine/internal/corpus"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize prepares a title or file base name for comparison: colons
// become spaces, whitespace runs collapse to single spaces, the result is
// trimmed and lowercased. Authors write `Правило 3: ПОДТВЕРЖДЕНИЕ` while
// files are named with the colon dropped; this folds both to the same form.
func Normalize(value string) string {
	noColon := strings.ReplaceAll(value, ":", " ")
	collapsed := whitespaceRun.ReplaceAllString(noColon, " ")
	return strings.ToLower(strings.TrimSpace(collapsed))
}

// KnowledgeBase finds the file whose normalized base name starts with the
// normalized title. Prefix matching tolerates trailing qualifiers in file
// names. First match in listing order wins; listings are sorted by the
// corpus layer, so the result is deterministic. A title that normalizes to
// empty matches nothing: a bare empty prefix would select whatever file
// happens to sort first, which is never what the marker meant.
func KnowledgeBase(rawTitle string, files []string) (string, bool) {
	target := Normalize(rawTitle)
	if target == "" {
		return "", false
	}
	for _, name := range files {
		if strings.HasPrefix(Normalize(corpus.BaseName(name)), target) {
			return name, true
		}
	}
	return "", false
}

// Agent finds the file for an agent name, preferring an exact
// case-insensitive base-name match and falling back to a substring match
// only when no exact match exists, so one agent name being a prefix of
// another never picks the wrong file.
func Agent(name string, files []string) (string, bool) {
	target := strings.ToLower(name)
	if target == "" {
		return "", false
	}
	for _, file := range files {
		if strings.ToLower(corpus.BaseName(file)) == target {
			return file, true
		}
	}
	for _, file := range files {
		if strings.Contains(strings.ToLower(corpus.BaseName(file)), target) {
			return file, true
		}
	}
	return "", false
}
