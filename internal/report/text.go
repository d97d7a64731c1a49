package report

import (
	"strings"
	"unicode"
)

// runeWidth approximates Helvetica advance widths in ems.
func runeWidth(r rune) float64 {
	switch {
	case strings.ContainsRune("ijl.,:;'|!", r):
		return 0.28
	case r == ' ' || strings.ContainsRune("ftrI()[]-/", r):
		return 0.33
	case strings.ContainsRune("mwMW", r):
		return 0.85
	case unicode.IsDigit(r):
		return 0.556
	case unicode.IsUpper(r):
		return 0.68
	default:
		return 0.5
	}
}

// TextWidth estimates the width of s in points at the given font size.
func TextWidth(s string, size float64) float64 {
	w := 0.0
	for _, r := range s {
		w += runeWidth(r)
	}
	return w * size
}

// Wrap splits text into lines no wider than width. Paragraph breaks are
// kept; words wider than a line are split by rune.
func Wrap(s string, width, size float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, w := range words {
			for TextWidth(w, size) > width {
				head, tail := splitToWidth(w, width, size)
				if cur != "" {
					lines = append(lines, cur)
					cur = ""
				}
				lines = append(lines, head)
				w = tail
			}
			if w == "" {
				continue
			}
			candidate := w
			if cur != "" {
				candidate = cur + " " + w
			}
			if TextWidth(candidate, size) <= width {
				cur = candidate
				continue
			}
			lines = append(lines, cur)
			cur = w
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	return lines
}

func splitToWidth(w string, width, size float64) (string, string) {
	runes := []rune(w)
	acc := 0.0
	for i, r := range runes {
		acc += runeWidth(r) * size
		if acc > width {
			if i == 0 {
				return string(runes[:1]), string(runes[1:])
			}
			return string(runes[:i]), string(runes[i:])
		}
	}
	return w, ""
}
