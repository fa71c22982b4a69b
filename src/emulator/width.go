package emulator

import "github.com/unilibs/uniwidth"

// isWideRune returns true if the rune occupies two columns (CJK
// ideographs, Hangul, fullwidth forms, supplementary CJK planes).
func isWideRune(r rune) bool {
	return uniwidth.RuneWidth(r) == 2
}

// RuneWidth returns the display width of r: 2 for wide runes, 1 otherwise.
func RuneWidth(r rune) int {
	if isWideRune(r) {
		return 2
	}
	return 1
}
