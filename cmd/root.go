package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"ghsync/internal/config"
	"ghsync/internal/githubapi"
	"ghsync/internal/sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	mode         string
	maxFollows   int
	maxUnfollows int
	timeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "ghsync",
	Short: "Reconcile GitHub followers and following",
	Long: `ghsync fetches the authenticated user's follower and following
lists, computes who to follow back and who to unfollow, and applies a
bounded number of changes with randomized pacing.

The default dry-run mode only reports the plan; pass --mode execute to
apply it. The token is read from GITHUB_TOKEN (or a config file).`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cfgFile, mode, maxFollows, maxUnfollows, timeout)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(
		&cfgFile,
		"config",
		"c",
		"",
		"path to config file",
	)
	rootCmd.Flags().StringVar(
		&mode,
		"mode",
		string(sync.ModeDryRun),
		"dry-run or execute",
	)
	rootCmd.Flags().IntVar(
		&maxFollows,
		"max-follows",
		5,
		"maximum follow actions per run",
	)
	rootCmd.Flags().IntVar(
		&maxUnfollows,
		"max-unfollows",
		5,
		"maximum unfollow actions per run",
	)
	rootCmd.Flags().DurationVar(
		&timeout,
		"timeout",
		10*time.Minute,
		"overall run timeout (0 disables)",
	)
}

func runSync(configPath, modeStr string, maxFollows, maxUnfollows int, timeout time.Duration) error {
	m, err := sync.ParseMode(modeStr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	runID := uuid.NewString()[:8]
	log.Infof("Starting run %s (mode=%s)", runID, m)

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client := githubapi.NewClient(cfg.Token)
	if cfg.APIURL != "" {
		client.SetBaseURL(cfg.APIURL)
	}

	if err := client.CheckRateLimit(ctx); err != nil {
		return fmt.Errorf("rate limit check: %w", err)
	}

	followers := client.ListFollowers(ctx)
	following := client.ListFollowing(ctx)
	log.Infof("Got %d followers, %d following.", len(followers), len(following))

	plan := sync.Reconcile(followers, following, maxFollows, maxUnfollows)
	log.Infof("Users to follow: %d", len(plan.ToFollow))
	log.Infof("Users to unfollow: %d", len(plan.ToUnfollow))

	res, err := sync.NewRunner(client, m).Run(ctx, plan)
	if err != nil {
		return err
	}

	log.Infof("Run %s done: followed %d, unfollowed %d, skipped %d",
		runID, res.Followed, res.Unfollowed, res.Skipped)
	return nil
}
