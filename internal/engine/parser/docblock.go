package parser

import (
	"strings"
)

type tagSpan struct {
	name  string
	start int // byte offset of '@'
	end   int // byte offset just past the name
}

// scanDocTags finds annotation tag names in the raw text of a doc comment.
// An '@' opens a tag only at the start of a line or after whitespace, '*',
// '(', '{', ',' or '=', so e-mail addresses are skipped. Inside annotation
// arguments double-quoted strings are skipped as well; a string left open
// ends at the line break.
func scanDocTags(comment string) []tagSpan {
	var tags []tagSpan
	depth := 0
	inString := false
	for i := 0; i < len(comment); i++ {
		c := comment[i]
		if inString {
			if c == '"' || c == '\n' {
				inString = false
			}
			continue
		}
		switch c {
		case '(':
			depth++
			continue
		case ')':
			if depth > 0 {
				depth--
			}
			continue
		case '"':
			// Prose quotes outside argument lists never hide tags.
			inString = depth > 0
			continue
		case '@':
		default:
			continue
		}
		if i > 0 && !opensTag(comment[i-1]) {
			continue
		}
		end := scanTagName(comment, i+1)
		if end == i+1 {
			continue
		}
		tags = append(tags, tagSpan{name: comment[i:end], start: i, end: end})
		i = end - 1
	}
	return tags
}

func opensTag(prev byte) bool {
	switch prev {
	case ' ', '\t', '\n', '\r', '*', '(', '{', ',', '=':
		return true
	default:
		return false
	}
}

// scanTagName returns the end offset of a '\'-separated identifier path
// starting at pos, with an optional leading '\'. A dangling trailing '\' is
// not consumed.
func scanTagName(s string, pos int) int {
	i := pos
	if i < len(s) && s[i] == '\\' {
		i++
	}
	end := pos
	for {
		j := scanIdentifier(s, i)
		if j == i {
			return end
		}
		end = j
		if j < len(s) && s[j] == '\\' {
			i = j + 1
			continue
		}
		return end
	}
}

func scanIdentifier(s string, pos int) int {
	i := pos
	for i < len(s) {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= 0x80:
		case c >= '0' && c <= '9' && i > pos:
		case c == '-' && i > pos && i+1 < len(s) && isIdentByte(s[i+1]):
			// phpdoc tags such as @psalm-suppress or @phpstan-var
		default:
			return i
		}
		i++
	}
	return i
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}

// docTagsFromComment converts scanned spans into file-relative locations.
// startByte, startRow and startCol describe where the comment begins in the
// file (0-based, as reported by tree-sitter).
func docTagsFromComment(filePath, comment string, startByte, startRow, startCol int) []DocTag {
	spans := scanDocTags(comment)
	if len(spans) == 0 {
		return nil
	}

	tags := make([]DocTag, 0, len(spans))
	for _, span := range spans {
		line, col := advancePosition(comment[:span.start], startRow, startCol)
		endLine, endCol := advancePosition(comment[span.start:span.end], line, col)
		tags = append(tags, DocTag{
			Name: span.name,
			Location: Location{
				File:      filePath,
				Line:      line + 1,
				Column:    col + 1,
				EndLine:   endLine + 1,
				EndColumn: endCol + 1,
				Offset:    startByte + span.start,
				Length:    span.end - span.start,
			},
		})
	}
	return tags
}

func advancePosition(text string, row, col int) (int, int) {
	n := strings.Count(text, "\n")
	if n == 0 {
		return row, col + len(text)
	}
	return row + n, len(text) - strings.LastIndex(text, "\n") - 1
}
