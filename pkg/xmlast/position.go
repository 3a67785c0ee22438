package xmlast

import "unicode/utf8"

// LineCol returns the 1-based line and rune column of a byte offset.
// Offsets outside the text are clamped.
func (d *Document) LineCol(offset int) (line, col int) {
	if d == nil {
		return 1, 1
	}
	offset = max(0, min(offset, len(d.Text)))

	line, lineStart := 1, 0
	for i := 0; i < offset; i++ {
		if d.Text[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, utf8.RuneCountInString(d.Text[lineStart:offset]) + 1
}
