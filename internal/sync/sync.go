package sync

import "sort"

// Reconcile computes the bounded follow/unfollow plan for one run:
// followers not yet followed back, and followed accounts that no
// longer follow back. Candidates are sorted before truncation so the
// selected subset is stable across runs.
func Reconcile(followers, following map[string]struct{}, maxFollow, maxUnfollow int) Plan {
	return Plan{
		ToFollow:   truncate(difference(followers, following), maxFollow),
		ToUnfollow: truncate(difference(following, followers), maxUnfollow),
	}
}

// difference returns a ∖ b as a sorted slice.
func difference(a, b map[string]struct{}) []string {
	out := make([]string, 0, len(a))
	for login := range a {
		if _, ok := b[login]; !ok {
			out = append(out, login)
		}
	}
	sort.Strings(out)
	return out
}

func truncate(s []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
