package glpi

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	styleBlockRe    = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	scriptBlockRe   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	tagRe           = regexp.MustCompile(`<[^>]*>?`)
	numericEntityRe = regexp.MustCompile(`&#(\d+);`)
	whitespaceRe    = regexp.MustCompile(`\s+`)

	leadingTextRe = regexp.MustCompile(`^([^<]+)`)
	mailtoRe      = regexp.MustCompile(`mailto:([a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,})`)
	telRe         = regexp.MustCompile(`tel:([^"'>\s]+)`)
)

// Clean strips HTML down to display text: style and script blocks go first
// (tags and their contents), then all remaining tags, then the entity set
// GLPI emits, and finally whitespace runs collapse to single spaces.
func Clean(html string) string {
	if html == "" {
		return ""
	}
	s := styleBlockRe.ReplaceAllString(html, "")
	s = scriptBlockRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = numericEntityRe.ReplaceAllStringFunc(s, decodeNumericEntity)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func decodeNumericEntity(entity string) string {
	n, err := strconv.Atoi(entity[2 : len(entity)-1])
	if err != nil || n < 0 || n > utf8.MaxRune || !utf8.ValidRune(rune(n)) {
		return entity
	}
	return string(rune(n))
}

// ContactInfo is the structured form of the mailto/tel-laden HTML GLPI
// renders for requester and technician columns.
type ContactInfo struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
}

// ExtractContactInfo pulls name, email and phone out of a contact HTML
// snippet: the name is the leading text before the first tag, falling back
// to the snippet's text content when the markup starts immediately; the
// email is the first mailto: target, the phone the first tel: target.
// Anything absent comes back empty.
func ExtractContactInfo(html string) ContactInfo {
	if html == "" {
		return ContactInfo{}
	}
	var info ContactInfo
	if m := leadingTextRe.FindStringSubmatch(html); m != nil {
		info.Nome = strings.TrimSpace(m[1])
	} else {
		info.Nome = Clean(html)
	}
	if m := mailtoRe.FindStringSubmatch(html); m != nil {
		info.Email = m[1]
	}
	if m := telRe.FindStringSubmatch(html); m != nil {
		info.Telefone = m[1]
	}
	return info
}
