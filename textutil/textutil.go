// Package textutil provides the text shaping helpers shared by tools and
// environment observations: line numbering with breakpoint markers, code
// normalization, ANSI stripping, and pytest summary scraping.
package textutil

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// BreakpointKeySep separates the file path from the line number in a
// breakpoint key such as "src/main.py|||42".
const BreakpointKeySep = "|||"

// BreakpointKey builds the canonical key for a breakpoint at line of path.
func BreakpointKey(path string, line int) string {
	return path + BreakpointKeySep + strconv.Itoa(line)
}

// ParseBreakpointKey splits a breakpoint key into its file path and line
// number. ok is false when key does not have the "path|||line" form.
func ParseBreakpointKey(key string) (path string, line int, ok bool) {
	before, after, found := strings.Cut(key, BreakpointKeySep)
	if !found {
		return "", 0, false
	}
	n, err := strconv.Atoi(after)
	if err != nil {
		return "", 0, false
	}
	return before, n, true
}

// LineNumbers renders code with a 1-based line number gutter. Lines of path
// that appear as keys in the breakpoint state carry a "B" marker in the left
// margin. The fragment after the final newline counts as a line and is
// numbered too.
//
// The gutter reserves three columns more than the widest line number needs,
// so short files keep a stable four column gutter.
func LineNumbers(code, path string, breakpoints map[string]string) string {
	lines := strings.Split(code, "\n")
	width := len(strconv.Itoa(len(lines))) + 3

	marked := make(map[int]bool, len(breakpoints))
	if path != "" {
		for key := range breakpoints {
			if p, line, ok := ParseBreakpointKey(key); ok && p == path {
				marked[line] = true
			}
		}
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if marked[i+1] {
			b.WriteString("B ")
		} else {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%*d %s", width, i+1, line)
	}
	return b.String()
}

// FormatBreakpoints renders the active breakpoint table as one "line <N> in
// <file>" line per breakpoint, grouped by file and ordered by ascending line
// number. An empty table renders the fixed sentinel.
func FormatBreakpoints(state map[string]string) string {
	if len(state) == 0 {
		return "No breakpoints are set."
	}
	type breakpoint struct {
		path string
		line int
	}
	bps := make([]breakpoint, 0, len(state))
	for key := range state {
		if p, line, ok := ParseBreakpointKey(key); ok {
			bps = append(bps, breakpoint{path: p, line: line})
		}
	}
	sort.Slice(bps, func(i, j int) bool {
		if bps[i].path != bps[j].path {
			return bps[i].path < bps[j].path
		}
		return bps[i].line < bps[j].line
	})
	lines := make([]string, len(bps))
	for i, bp := range bps {
		lines[i] = fmt.Sprintf("line %d in %s", bp.line, bp.path)
	}
	return strings.Join(lines, "\n")
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[@-~]`)

// StripANSI removes ANSI control sequences, such as the color and cursor
// codes test runners emit, so terminal output reads as plain text.
func StripANSI(s string) string {
	if !strings.Contains(s, "\x1b") {
		return s
	}
	return ansiPattern.ReplaceAllString(s, "")
}

// CleanCode normalizes editor supplied code: literal \n escape sequences
// become real newlines and trailing whitespace is stripped from every line.
func CleanCode(code string) string {
	code = strings.ReplaceAll(code, `\n`, "\n")
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.Join(lines, "\n")
}
