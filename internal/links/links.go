// Package links splits document text into plain runs and the two literal
// reference markers document authors embed: knowledge-base citations and
// agent invocations.
package links

import "regexp"

type Kind string

const (
	KindText  Kind = "text"
	KindKB    Kind = "kb"
	KindAgent Kind = "agent"
)

// Segment is one contiguous piece of source text. Text always holds the
// exact source characters, so concatenating segments in order reproduces
// the input byte for byte. Title is set for kb segments, Name for agent
// segments.
type Segment struct {
	Kind  Kind   `json:"kind"`
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
	Name  string `json:"name,omitempty"`
}

// The marker wire format. Keyword phrases match case-insensitively; the
// punctuation (colon after the kb phrase, double quotes around the payload)
// is exact. Anything that deviates is plain text, never an error.
var markerPattern = regexp.MustCompile(
	`(?i)(Используй статью из БЗ:\s*"([^"]+)"|вызывай агента с именем\s*"([^"]+)")`,
)

// Parse scans text left to right for non-overlapping markers. Input without
// markers comes back as a single text segment; empty input yields no
// segments.
func Parse(text string) []Segment {
	if text == "" {
		return nil
	}
	var segments []Segment
	last := 0
	for _, match := range markerPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := match[0], match[1]
		if start > last {
			segments = append(segments, Segment{Kind: KindText, Text: text[last:start]})
		}
		full := text[start:end]
		if match[4] >= 0 {
			segments = append(segments, Segment{
				Kind:  KindKB,
				Text:  full,
				Title: text[match[4]:match[5]],
			})
		} else if match[6] >= 0 {
			segments = append(segments, Segment{
				Kind: KindAgent,
				Text: full,
				Name: text[match[6]:match[7]],
			})
		}
		last = end
	}
	if last < len(text) {
		segments = append(segments, Segment{Kind: KindText, Text: text[last:]})
	}
	return segments
}

// References filters a parse down to just the kb/agent segments, in order.
func References(segments []Segment) []Segment {
	var refs []Segment
	for _, seg := range segments {
		if seg.Kind == KindKB || seg.Kind == KindAgent {
			refs = append(refs, seg)
		}
	}
	return refs
}
