package problemgen

import (
	"fmt"
	"strings"
)

// buildPrior formats earlier problems of the batch for the prompt,
// keeping only the most recent max. Returns "" when there is nothing to list.
func buildPrior(prior []string, max int) string {
	if len(prior) == 0 || max <= 0 {
		return ""
	}
	if len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, p := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, oneLine(p, 80))
	}
	return strings.TrimRight(b.String(), "\n")
}

// oneLine flattens s and shortens it to at most n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}
