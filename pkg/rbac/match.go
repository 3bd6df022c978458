package rbac

import (
	"slices"
	"strings"
)

// matches reports whether grant covers capability.
// "*" covers everything, "a.*" covers "a.b" and "a.b.c" but not "a".
func matches(grant, capability string) bool {
	if capability == "" {
		return false
	}
	if grant == Wildcard || grant == capability {
		return true
	}
	if prefix, ok := strings.CutSuffix(grant, ".*"); ok {
		return strings.HasPrefix(capability, prefix+".")
	}
	return false
}

func matchAny(grants []string, capability string) bool {
	for _, g := range grants {
		if matches(g, capability) {
			return true
		}
	}
	return false
}

// normalize drops duplicates and grants already covered by a wildcard in the same set.
func normalize(grants []string) []string {
	if slices.Contains(grants, Wildcard) {
		return []string{Wildcard}
	}

	out := make([]string, 0, len(grants))
	for i, g := range grants {
		g = strings.TrimSpace(g)
		if g == "" || slices.Contains(out, g) {
			continue
		}
		covered := false
		for j, other := range grants {
			if i != j && other != g && strings.HasSuffix(other, ".*") && matches(other, g) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, g)
		}
	}
	slices.Sort(out)
	return out
}
