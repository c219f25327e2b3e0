package extract

import "strings"

// lead-ins such as "Here are the tags:" that models prepend despite instructions
var leadInMarkers = []string{"tag", "topic", "keyword"}

// Tags splits a comma-separated completion into an ordered tag list.
// Entries are trimmed and empty entries dropped; duplicates are kept.
func Tags(content string) []string {
	content = strings.TrimSpace(content)
	if i := strings.Index(content, ":"); i >= 0 {
		prefix := strings.ToLower(content[:i])
		if !strings.Contains(prefix, ",") && containsAny(prefix, leadInMarkers) {
			content = content[i+1:]
		}
	}

	parts := strings.Split(content, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
