package domain

import "strings"

// Snapshot is a consistent view of the membership store.
type Snapshot struct {
	Tracked   []string // insertion order
	Exempt    []string // insertion order
	Submitted []string // today's submissions, duplicates allowed
}

// Missing returns tracked users that are neither exempt nor present in today's
// submissions, preserving tracked order. Handles compare case-insensitively.
func Missing(s Snapshot) []string {
	exempt := toSet(s.Exempt)
	submitted := toSet(s.Submitted)

	var out []string
	for _, u := range s.Tracked {
		key := strings.ToLower(u)
		if _, ok := exempt[key]; ok {
			continue
		}
		if _, ok := submitted[key]; ok {
			continue
		}
		out = append(out, u)
	}
	return out
}

func toSet(xs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		m[strings.ToLower(x)] = struct{}{}
	}
	return m
}
