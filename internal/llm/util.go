package llm

import "strings"

// CleanJSONBlock strips markdown code fences and any prose around a JSON object.
// Models often wrap JSON in ```json ... ``` even when asked not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop a language tag such as "json" on the fence line.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			tag := text[:idx]
			if len(tag) < 20 && !strings.ContainsAny(tag, " {[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Prose before or after a bare object.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start > 0 && end > start {
		return text[start : end+1]
	}
	if start == 0 && end > 0 && end < len(text)-1 {
		return text[:end+1]
	}
	return text
}
