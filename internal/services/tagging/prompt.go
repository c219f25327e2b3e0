package tagging

import (
	"venue-tagger/internal/services/llm"
)

func tagPrompt(text string, limit int) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: "You are an expert document tagger."},
		{Role: llm.RoleSystem, Content: "You will be given a document and you will provide a list of tags to assist people who are searching for this document"},
		{Role: llm.RoleUser, Content: "Provide only a comma-separated list of relevant tags and key topics from this document. Do not include any explanations or extra text.\n\n" + truncate(text, limit)},
	}
}

// truncate keeps the first limit characters of s.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
