package htmlutil

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

func dropUnprintable(r rune) rune {
	if unicode.IsSpace(r) || unicode.IsPrint(r) {
		return r
	}
	return -1
}

// Text returns the text content of sel with runs of whitespace (&nbsp;
// included) collapsed into single spaces.
func Text(sel *goquery.Selection) string {
	text := strings.Map(dropUnprintable, sel.Text())
	return strings.Join(strings.Fields(text), " ")
}

// Texts returns the Text of every element in sel, in document order.
func Texts(sel *goquery.Selection) []string {
	texts := make([]string, sel.Length())
	sel.Each(func(i int, s *goquery.Selection) {
		texts[i] = Text(s)
	})
	return texts
}
