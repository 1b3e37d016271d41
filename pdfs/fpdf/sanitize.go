package fpdf

import "strings"

// Sanitize drops runes gofpdf cannot map in a UTF-8 font (outside the BMP, emoji mostly)
// and control characters other than newline.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case r < 0x20, r == 0x7f, r > 0xffff:
			return -1
		}
		return r
	}, strings.ReplaceAll(s, "\r\n", "\n"))
}
