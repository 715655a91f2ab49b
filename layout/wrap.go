package layout

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis marks truncated text.
const Ellipsis = "..."

// Line limits, in runes and lines.
const (
	BodyMaxLines     = 3
	HeaderMaxLines   = 2
	HeaderLineLength = 15
	TitleLineLength  = 45
	TitleMaxLines    = 2
)

// WrapRule bounds the wrapped form of a cell.
type WrapRule struct {
	MaxLineLength int
	MaxLines      int
	// NoWrap keeps the text on one line, truncating it at MaxLineLength.
	NoWrap bool
}

// RuleFor returns the body-cell wrap rule for a category.
func RuleFor(category Category) WrapRule {
	switch category {
	case Narrow:
		return WrapRule{MaxLineLength: 12, MaxLines: 1, NoWrap: true}
	case Medium:
		return WrapRule{MaxLineLength: 14, MaxLines: BodyMaxLines}
	case Wide:
		return WrapRule{MaxLineLength: 18, MaxLines: BodyMaxLines}
	case ExtraWide:
		return WrapRule{MaxLineLength: 30, MaxLines: BodyMaxLines}
	default:
		return WrapRule{MaxLineLength: 15, MaxLines: BodyMaxLines}
	}
}

// WrapCellText wraps a body cell for its column category and returns the
// lines joined with "\n".
func WrapCellText(text string, category Category) string {
	rule := RuleFor(category)
	if rule.NoWrap {
		return Truncate(strings.Join(strings.Fields(text), " "), rule.MaxLineLength)
	}
	return strings.Join(WrapText(text, rule.MaxLineLength, rule.MaxLines), "\n")
}

// WrapHeader wraps a header label onto at most two lines of 15 runes. A
// label that needs more lines is split at the word boundary that best
// balances the two halves.
func WrapHeader(label string) string {
	return strings.Join(wrapBalanced(label, HeaderLineLength, HeaderMaxLines), "\n")
}

// WrapTitle wraps a document title onto at most two lines of 45 runes.
func WrapTitle(title string) []string {
	return wrapBalanced(title, TitleLineLength, TitleMaxLines)
}

// WrapText greedily packs words into lines of at most maxLen runes. Words
// longer than maxLen are truncated with an ellipsis. Lines past maxLines
// are folded into the last permitted line, which is truncated again.
func WrapText(text string, maxLen, maxLines int) []string {
	if maxLen <= 0 {
		return nil
	}
	lines := greedyLines(strings.Fields(text), maxLen)
	if maxLines > 0 && len(lines) > maxLines {
		tail := strings.Join(lines[maxLines-1:], " ")
		lines = append(lines[:maxLines-1], Truncate(tail, maxLen))
	}
	return lines
}

func greedyLines(words []string, maxLen int) []string {
	var lines []string
	line := ""
	for _, word := range words {
		word = Truncate(word, maxLen)
		switch {
		case line == "":
			line = word
		case runeLen(line)+1+runeLen(word) <= maxLen:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// wrapBalanced wraps greedily and, when that overflows maxLines == 2,
// splits the words at the boundary minimising the longer half. Ties go to
// the earlier boundary. Each half is truncated to maxLen.
func wrapBalanced(text string, maxLen, maxLines int) []string {
	words := strings.Fields(text)
	lines := greedyLines(words, maxLen)
	if len(lines) <= maxLines || maxLines != 2 || len(words) < 2 {
		return WrapText(text, maxLen, maxLines)
	}

	best, bestCost := 1, -1
	for k := 1; k < len(words); k++ {
		left := runeLen(strings.Join(words[:k], " "))
		right := runeLen(strings.Join(words[k:], " "))
		cost := max(left, right)
		if bestCost < 0 || cost < bestCost {
			best, bestCost = k, cost
		}
	}
	return []string{
		Truncate(strings.Join(words[:best], " "), maxLen),
		Truncate(strings.Join(words[best:], " "), maxLen),
	}
}

// Truncate shortens s to at most maxLen runes, ending with Ellipsis when
// anything was cut.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if runeLen(s) <= maxLen {
		return s
	}
	if maxLen <= len(Ellipsis) {
		return string([]rune(s)[:maxLen])
	}
	return strings.TrimRight(string([]rune(s)[:maxLen-len(Ellipsis)]), " ") + Ellipsis
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
