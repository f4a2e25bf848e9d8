package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type styledWord struct {
	s     string
	width int
}

func buildStyledWords(card []string, marks []mark, selfMarks []bool, current int) []styledWord {
	out := make([]styledWord, 0, len(card))
	for i, word := range card {
		style := pendingStyle
		switch {
		case i < len(marks) && marks[i] == markCorrect && selfMarks[i]:
			style = selfCorrectedStyle
		case i < len(marks) && marks[i] == markCorrect:
			style = correctStyle
		case i < len(marks) && marks[i] == markError:
			style = incorrectStyle
		case i == current:
			style = currentWordStyle
		}
		out = append(out, styledWord{
			s:     style.Render(word),
			width: runewidth.StringWidth(word),
		})
	}
	return out
}

func renderStyledWords(words []styledWord) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, w.s)
	}
	return strings.Join(parts, " ")
}

// wrapStyledWords breaks lines between words so no line exceeds width
// display cells. A word wider than width gets a line of its own.
func wrapStyledWords(words []styledWord, width int) string {
	if width <= 0 {
		return renderStyledWords(words)
	}
	var out strings.Builder
	lineWidth := 0
	for i, w := range words {
		switch {
		case i == 0:
		case lineWidth+1+w.width > width:
			out.WriteRune('\n')
			lineWidth = 0
		default:
			out.WriteRune(' ')
			lineWidth++
		}
		out.WriteString(w.s)
		lineWidth += w.width
	}
	return out.String()
}
