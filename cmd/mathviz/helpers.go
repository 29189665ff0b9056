package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

var (
	heading = color.New(color.FgGreen, color.Bold).SprintFunc()
	label   = color.New(color.FgCyan, color.Bold).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
)

// truncate shortens s to n runes on one line.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// parseFilters turns repeated facet=value flags into facet constraints.
func parseFilters(pairs []string) (map[string][]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := map[string][]string{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("filter %q: want facet=value", p)
		}
		k = strings.TrimSpace(k)
		out[k] = append(out[k], v)
	}
	return out, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
