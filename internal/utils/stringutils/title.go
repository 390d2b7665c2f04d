package stringutils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	urlPattern          = regexp.MustCompile(`(?i)(https?://|ftp://|www\.)[^\s]+`)
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
	emailPattern        = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	multiSpacePattern   = regexp.MustCompile(`\s+`)
)

// SanitizeTitleContent strips URLs, markdown links, emails and special
// characters so the remaining text is usable as a conversation title.
func SanitizeTitleContent(content string) string {
	content = urlPattern.ReplaceAllString(content, "")
	content = markdownLinkPattern.ReplaceAllString(content, "$1")
	content = emailPattern.ReplaceAllString(content, "")

	// Keep unicode letters/numbers, whitespace and basic punctuation.
	var result strings.Builder
	for _, r := range content {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) ||
			r == '.' || r == ',' || r == '!' || r == '?' || r == '-' || r == '\'' {
			result.WriteRune(r)
		}
	}
	content = result.String()

	content = multiSpacePattern.ReplaceAllString(content, " ")
	content = strings.TrimSpace(content)
	content = strings.TrimRight(content, " .,!?-'")

	return content
}

// TruncateTitle shortens a title to maxLen runes, preferring word
// boundaries. Cuts happen on rune boundaries so multibyte text never
// produces invalid UTF-8.
func TruncateTitle(title string, maxLen int) string {
	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}

	// Reserve room for the ellipsis so the result never exceeds maxLen.
	ellipsis := "..."
	contentLimit := maxLen - len(ellipsis)
	if contentLimit < 0 {
		contentLimit = 0
	}

	truncated := runes[:contentLimit]
	cut := len(truncated)
	minLen := contentLimit / 2

	for i := len(truncated) - 1; i > minLen; i-- {
		if truncated[i] == ' ' {
			cut = i
			break
		}
	}

	return strings.TrimRight(string(truncated[:cut]), " ") + ellipsis
}

// GenerateTitle produces a clean, truncated title from raw message content.
// It returns the empty string when nothing usable remains after sanitizing.
func GenerateTitle(content string, maxLen int) string {
	sanitized := SanitizeTitleContent(content)
	if sanitized == "" {
		return ""
	}
	return TruncateTitle(sanitized, maxLen)
}
