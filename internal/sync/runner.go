package sync

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Each mutation is followed by a randomized pause in this range to
// stay under abuse-detection thresholds.
const (
	minActionDelay = 2 * time.Second
	maxActionDelay = 5 * time.Second
)

// API is the part of the GitHub client the runner mutates through.
type API interface {
	Follow(ctx context.Context, login string) (int, error)
	Unfollow(ctx context.Context, login string) (int, error)
}

// Runner applies a Plan against the API, one call at a time.
type Runner struct {
	api  API
	mode Mode

	// overridable in tests
	sleep func(time.Duration)
	rng   *rand.Rand
}

func NewRunner(api API, mode Mode) *Runner {
	return &Runner{
		api:   api,
		mode:  mode,
		sleep: time.Sleep,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run applies plan. In dry-run mode it reports both candidate lists in
// full and touches nothing remote. In execute mode it walks the follow
// list then the unfollow list sequentially; a call that fails or is
// not confirmed with a 204 is logged and skipped, never fatal.
func (r *Runner) Run(ctx context.Context, plan Plan) (Result, error) {
	var res Result

	if r.mode == ModeDryRun {
		log.Infof("[dry-run] would follow: %v", plan.ToFollow)
		log.Infof("[dry-run] would unfollow: %v", plan.ToUnfollow)
		return res, nil
	}

	if err := r.apply(ctx, "follow", plan.ToFollow, r.api.Follow, &res.Followed, &res.Skipped); err != nil {
		return res, err
	}
	if err := r.apply(ctx, "unfollow", plan.ToUnfollow, r.api.Unfollow, &res.Unfollowed, &res.Skipped); err != nil {
		return res, err
	}
	return res, nil
}

func (r *Runner) apply(ctx context.Context, action string, logins []string, call func(context.Context, string) (int, error), done, skipped *int) error {
	for _, login := range logins {
		if err := ctx.Err(); err != nil {
			return err
		}

		log.WithFields(log.Fields{"action": action, "login": login}).Info("Applying")

		status, err := call(ctx, login)
		switch {
		case err != nil:
			log.WithFields(log.Fields{"action": action, "login": login}).Warnf("Call failed: %v", err)
			*skipped++
		case status == http.StatusNoContent:
			log.WithFields(log.Fields{"action": action, "login": login}).Info("Confirmed")
			*done++
		default:
			log.WithFields(log.Fields{"action": action, "login": login, "status": status}).Warn("Not confirmed")
			*skipped++
		}

		r.sleep(r.delay())
	}
	return nil
}

// delay draws a pause uniformly from [minActionDelay, maxActionDelay).
func (r *Runner) delay() time.Duration {
	return minActionDelay + time.Duration(r.rng.Int63n(int64(maxActionDelay-minActionDelay)))
}
