package extract

import (
	"regexp"
	"strings"
)

var (
	reCRLF     = regexp.MustCompile(`\r\n?`)
	reSpaces   = regexp.MustCompile(`[ \t]+`)
	reWrap     = regexp.MustCompile(`([^\n])\n([^\n])`)
	reBlankRun = regexp.MustCompile(`\n{2,}`)
)

// Normalize cleans raw PDF text into the shape the segmenter expects:
// runs of spaces and tabs become one space, a lone line break inside a
// sentence becomes a space, page breaks disappear, and runs of blank
// lines collapse to exactly one.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	// pdftotext separates pages with a form feed
	s = strings.ReplaceAll(s, "\f", "\n\n")
	s = reSpaces.ReplaceAllString(s, " ")
	// join wrapped lines until stable: consecutive single breaks overlap,
	// so one pass can leave a stray newline behind
	for {
		next := reWrap.ReplaceAllString(s, "$1 $2")
		if next == s {
			break
		}
		s = next
	}
	s = reBlankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
