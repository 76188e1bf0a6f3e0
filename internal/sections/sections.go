// Package sections implements the shared section-header heuristic used by the
// structure, citations and scientific-design agents.
package sections

import (
	"sort"
	"strings"
	"unicode"
)

// maxHeaderLen is the length above which a line is no longer considered a
// candidate header unless it is fully upper-case.
const maxHeaderLen = 60

// Index maps a normalized section-header text to the line index of its first
// occurrence.
type Index map[string]int

// Detect scans the document lines for candidate section headers. A non-blank
// line is a candidate if it is fully upper-case, or if it is shorter than 60
// characters and does not end with a period. Only the first occurrence of a
// normalized header is recorded.
func Detect(lines []string) Index {
	index := make(Index)
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}

		if isUpper(stripped) || (len([]rune(stripped)) < maxHeaderLen && !strings.HasSuffix(stripped, ".")) {
			key := strings.ToUpper(stripped)
			if _, seen := index[key]; !seen {
				index[key] = i
			}
		}
	}
	return index
}

// SplitLines normalizes line endings and splits the document into lines.
func SplitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// Block returns the text block of the section starting at startLine: the lines
// from the header up to the next detected section (by position) or the end of
// the document.
func (idx Index) Block(lines []string, startLine int) string {
	end := len(lines)
	for _, pos := range idx.sortedPositions() {
		if pos > startLine {
			end = pos
			break
		}
	}
	if startLine > len(lines) {
		return ""
	}
	return strings.Join(lines[startLine:end], "\n")
}

// sortedPositions returns every detected header line index in ascending order.
func (idx Index) sortedPositions() []int {
	positions := make([]int, 0, len(idx))
	for _, pos := range idx {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}

// isUpper reports whether s contains at least one cased rune and every cased
// rune is upper-case.
func isUpper(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}
