package processor

import "strings"

const (
	longVowelMark         = 'ー'
	verticalLongVowelMark = '｜'
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// TransformVertical turns every line of text into a column: one character per
// line, no trailing break. Empty lines are kept as empty columns.
func TransformVertical(text string) []string {
	lines := strings.Split(lineBreaks.Replace(text), "\n")

	segments := make([]string, 0, len(lines))
	for _, line := range lines {
		var b strings.Builder
		for i, r := range []rune(line) {
			if i > 0 {
				b.WriteByte('\n')
			}
			if r == longVowelMark {
				r = verticalLongVowelMark
			}
			b.WriteRune(r)
		}
		segments = append(segments, b.String())
	}
	return segments
}
