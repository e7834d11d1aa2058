package questiongen

import (
	"fmt"
	"strings"
)

// dedupSet tracks normalized question texts already accepted for a set.
type dedupSet map[string]bool

// add reports whether text is new, recording it if so.
func (d dedupSet) add(text string) bool {
	key := normalizeText(text)
	if d[key] {
		return false
	}
	d[key] = true
	return true
}

// buildDedup formats prior questions for the prompt, keeping the most
// recent max. Returns "None" if there are none.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
