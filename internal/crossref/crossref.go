// Package crossref finds issue keys in free text such as pasted ticket
// lists or command-line arguments.
package crossref

import (
	"regexp"
	"strings"
)

// issueKeyPattern matches issue keys (e.g., FSA-123, fsa-7).
var issueKeyPattern = regexp.MustCompile(`(?i)\b([a-z][a-z0-9]+-\d+)\b`)

// bareNumberPattern matches a ticket number given without its project.
var bareNumberPattern = regexp.MustCompile(`^\d+$`)

// ExtractIssueKeys extracts all issue keys from text, upper-cased.
// Returns a deduplicated list preserving the order of first occurrence.
func ExtractIssueKeys(text string) []string {
	matches := issueKeyPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, m := range matches {
		m = strings.ToUpper(m)
		if seen[m] {
			continue
		}
		seen[m] = true
		result = append(result, m)
	}
	return result
}

// ParseKeys reads keys from args. Each argument may hold several keys
// separated by commas or whitespace; a bare number is taken as a ticket of
// project. Keys of other projects are dropped when project is set.
func ParseKeys(project string, args ...string) []string {
	project = strings.ToUpper(strings.TrimSpace(project))

	var parts []string
	for _, a := range args {
		parts = append(parts, strings.FieldsFunc(a, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
		})...)
	}

	seen := make(map[string]bool)
	var result []string
	add := func(k string) {
		if project != "" && !strings.HasPrefix(k, project+"-") {
			return
		}
		if !seen[k] {
			seen[k] = true
			result = append(result, k)
		}
	}

	for _, p := range parts {
		if project != "" && bareNumberPattern.MatchString(p) {
			add(project + "-" + p)
			continue
		}
		for _, k := range ExtractIssueKeys(p) {
			add(k)
		}
	}
	return result
}

// MatchKnown extracts issue keys from text. If known is non-empty, only
// keys that appear in it are returned.
func MatchKnown(text string, known map[string]bool) []string {
	keys := ExtractIssueKeys(text)

	if len(known) == 0 {
		return keys
	}

	var filtered []string
	for _, key := range keys {
		if known[key] {
			filtered = append(filtered, key)
		}
	}
	return filtered
}
