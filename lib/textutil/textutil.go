package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeKeyword lowercases a keyword and collapses its inner whitespace
// so "My  Key " and "my key" are stored and matched the same way.
func NormalizeKeyword(keyword string) string {
	keyword = strings.ToLower(keyword)
	keyword = strings.Trim(keyword, " \n\t")
	keyword = whitespaceRegex.ReplaceAllString(keyword, " ")
	return keyword
}
