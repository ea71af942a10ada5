package contact

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`</?[^>]+(>|$)`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Sanitize убирает HTML-теги, обрезает пробелы по краям и схлопывает внутренние пробелы.
func Sanitize(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return whitespacePattern.ReplaceAllString(s, " ")
}
