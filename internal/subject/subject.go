// Package subject names the JAMB exam subjects and their display order.
package subject

import (
	"sort"
	"strings"
)

const (
	Mathematics = "Mathematics"
	Physics     = "Physics"
	Chemistry   = "Chemistry"
	Biology     = "Biology"
	English     = "English Language"
)

// All lists the core subjects in canonical order.
var All = []string{Mathematics, Physics, Chemistry, Biology, English}

var rank = func() map[string]int {
	m := make(map[string]int, len(All))
	for i, s := range All {
		m[strings.ToLower(s)] = i
	}
	m["english"] = m[strings.ToLower(English)]
	return m
}()

// Canonical maps a case-insensitive spelling of a core subject to its
// canonical name. Other names are returned trimmed but otherwise unchanged.
func Canonical(name string) string {
	name = strings.TrimSpace(name)
	if i, ok := rank[strings.ToLower(name)]; ok {
		return All[i]
	}
	return name
}

// Less orders core subjects canonically, ahead of any other subject, which
// sort alphabetically.
func Less(a, b string) bool {
	ra, aok := rank[strings.ToLower(a)]
	rb, bok := rank[strings.ToLower(b)]
	switch {
	case aok && bok:
		return ra < rb
	case aok != bok:
		return aok
	default:
		return a < b
	}
}

// Sort orders names in place with Less.
func Sort(names []string) {
	sort.SliceStable(names, func(i, j int) bool { return Less(names[i], names[j]) })
}
