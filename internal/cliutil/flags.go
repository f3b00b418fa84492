package cliutil

import (
	"strings"
)

// SplitList splits a comma separated flag or config value, dropping empty
// items. An empty value yields fallback.
func SplitList(value string, fallback []string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
