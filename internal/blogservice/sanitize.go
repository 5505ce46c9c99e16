package blogservice

import "regexp"

var scriptTagPattern = regexp.MustCompile(`(?i)<\s*script[^>]*>(.*?)<\s*/\s*script\s*>`)

// sanitizeContent strips script tags from the rich HTML body before storage.
func sanitizeContent(content string) string {
	return scriptTagPattern.ReplaceAllString(content, "")
}
