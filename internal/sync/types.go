package sync

import "fmt"

type Mode string

const (
	ModeDryRun  Mode = "dry-run"
	ModeExecute Mode = "execute"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeDryRun, ModeExecute:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, ModeDryRun, ModeExecute)
}

// Plan is the bounded set of actions one run will take.
type Plan struct {
	ToFollow   []string
	ToUnfollow []string
}

// Result counts what an executed plan actually did. Skipped covers
// actions whose call failed or was not confirmed with a 204.
type Result struct {
	Followed   int
	Unfollowed int
	Skipped    int
}
