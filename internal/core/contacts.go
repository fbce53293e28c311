package core

import "strings"

// SplitList splits a comma-separated input into trimmed, non-empty tokens.
func SplitList(s string) []string {
	return NormalizeList(strings.Split(s, ","))
}

// NormalizeList trims every entry and drops the empty ones. The result is
// never nil.
func NormalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
