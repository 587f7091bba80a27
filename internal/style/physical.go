package style

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dhirajnair/pspec/internal/pysyntax"
)

type physicalLine struct {
	text    string // without its terminator
	newline bool   // the line ended with a terminator
}

func physicalLines(source string) []physicalLine {
	parts := strings.Split(pysyntax.NormalizeNewlines(source), "\n")
	lines := make([]physicalLine, 0, len(parts))
	for i, p := range parts {
		last := i == len(parts)-1
		if last && p == "" {
			break
		}
		lines = append(lines, physicalLine{text: p, newline: !last})
	}
	return lines
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// expandIndent measures leading whitespace with tab stops every 8 columns.
func expandIndent(s string) int {
	width := 0
	for _, r := range s {
		switch r {
		case ' ':
			width++
		case '\t':
			width = width/8*8 + 8
		default:
			return width
		}
	}
	return width
}

func checkPhysical(lines []physicalLine, maxLength int) []raw {
	var out []raw
	for i, l := range lines {
		n := i + 1
		indent := leadingWhitespace(l.text)
		if tab := strings.IndexByte(indent, '\t'); tab >= 0 {
			out = append(out, raw{"W191", "indentation contains tabs", n, tab})
			if strings.IndexByte(indent, ' ') >= 0 {
				out = append(out, raw{"E101", "indentation contains mixed spaces and tabs", n, strings.IndexFunc(indent, func(r rune) bool {
					return r != rune(indent[0])
				})})
			}
		}

		stripped := strings.TrimRight(l.text, " \t\v\f")
		if stripped != l.text {
			if stripped == "" {
				out = append(out, raw{"W293", "blank line contains whitespace", n, 0})
			} else {
				out = append(out, raw{"W291", "trailing whitespace", n, len(stripped)})
			}
		}

		if length := utf8.RuneCountInString(stripped); length > maxLength && !longURLComment(stripped, maxLength) {
			out = append(out, raw{"E501", fmt.Sprintf("line too long (%d > %d characters)", length, maxLength), n, maxLength})
		}
	}

	if len(lines) > 0 {
		n := len(lines)
		last := lines[n-1]
		switch {
		case !last.newline:
			out = append(out, raw{"W292", "no newline at end of file", n, len(last.text)})
		case strings.TrimSpace(last.text) == "":
			out = append(out, raw{"W391", "blank line at end of file", n, 0})
		}
	}
	return out
}

// longURLComment exempts a comment holding a single long token, typically
// a URL, as long as the text before the token fits.
func longURLComment(line string, maxLength int) bool {
	chunks := strings.Fields(line)
	if len(chunks) != 2 || chunks[0] != "#" {
		return false
	}
	return utf8.RuneCountInString(line)-utf8.RuneCountInString(chunks[1]) < maxLength-7
}
