package textutil

import (
	"regexp"
	"strings"
)

// tagSeparator matches an ASCII or full-width comma plus trailing whitespace.
var tagSeparator = regexp.MustCompile(`[,，]\s*`)

// SplitTags parses user-entered tags. Empty entries are dropped.
func SplitTags(value string) []string {
	parts := tagSeparator.Split(value, -1)
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// JoinTags renders tags for editing.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
