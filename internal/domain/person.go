package domain

import "strings"

// PersonKey returns the join key for a display name: trimmed, inner whitespace
// collapsed, lowercased. Names are the only link between events, tasks,
// checklist items, and contacts, so this is a compatibility shim until callers
// carry contact ids.
func PersonKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// SamePerson reports whether two display names refer to the same person.
func SamePerson(a, b string) bool {
	key := PersonKey(a)
	return key != "" && key == PersonKey(b)
}
