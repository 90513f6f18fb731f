package jira

import (
	"encoding/json"
	"strings"
)

// PlainTextToADF converts plain text to Atlassian Document Format, one
// paragraph per line. Rich-text custom fields (e.g. the technicians field)
// only accept ADF on the v3 API.
func PlainTextToADF(text string) map[string]any {
	if text == "" {
		return nil
	}

	var content []any
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			content = append(content, map[string]any{
				"type":    "paragraph",
				"content": []any{},
			})
			continue
		}
		content = append(content, map[string]any{
			"type": "paragraph",
			"content": []any{
				map[string]any{"type": "text", "text": para},
			},
		})
	}

	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": content,
	}
}

// ADFToPlainText extracts the text of an ADF document. Plain JSON strings
// are returned as-is; anything else is returned verbatim.
func ADFToPlainText(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}

	var doc struct {
		Type    string `json:"type"`
		Content []struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"content"`
	}

	if err := json.Unmarshal(raw, &doc); err != nil || doc.Type != "doc" {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return string(raw)
	}

	var parts []string
	for _, block := range doc.Content {
		var line strings.Builder
		for _, inline := range block.Content {
			line.WriteString(inline.Text)
		}
		if line.Len() > 0 {
			parts = append(parts, line.String())
		}
	}
	return strings.Join(parts, "\n")
}

// Text returns a field as plain text whether it holds a string, a number or
// an ADF document.
func (f Fields) Text(id string) (string, bool) {
	if s, ok := f.String(id); ok {
		return s, true
	}
	raw, ok := f.Raw(id)
	if !ok {
		return "", false
	}
	s := ADFToPlainText(raw)
	return s, s != ""
}
