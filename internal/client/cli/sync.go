package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/client"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/robfig/cron/v3"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"
)

const syncRetries = 3

func printResult(w io.Writer, r *models.SyncResult) {
	fmt.Fprintf(w, "pulled %d (applied %d), pushed %d, conflicts %d\n",
		r.Pulled, r.Applied, r.Pushed, r.Conflicts)
	if r.Conflicts > 0 {
		fmt.Fprintln(w, "the server held newer versions of some records; they were overwritten")
	}
}

func (a *App) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.syncer.Sync(cmd.Context())
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (a *App) resyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resync",
		Short: "Forget the sync cursor and pull everything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.syncer.ResetCursor(ctx); err != nil {
				return err
			}
			res, err := a.syncer.Sync(ctx)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

// scheduledSync runs one cycle, retrying with exponential backoff while the
// server is unreachable.
func (a *App) scheduledSync(ctx context.Context) error {
	if a.Mode() == ModeOffline {
		a.logger.Debug(ctx, "offline, sync skipped")
		return nil
	}

	backoff := retry.WithMaxRetries(syncRetries, retry.NewExponential(a.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := a.syncer.Sync(ctx)
		if errors.Is(err, client.ErrUnavailable) {
			a.logger.Warn(ctx, "server unavailable, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, common.ErrSyncInProgress):
		a.logger.Debug(ctx, "previous sync still running")
		return nil
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ctx, ModeOffline)
	}
	return err
}

func (a *App) runCmd() *cobra.Command {
	var pingInterval time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Keep the replica in sync on the configured schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if pingInterval <= 0 {
				return fmt.Errorf("ping interval must be positive, got %s", pingInterval)
			}

			loc, err := time.LoadLocation(a.config.TimeZone)
			if err != nil {
				return fmt.Errorf("time zone %q: %w", a.config.TimeZone, err)
			}

			c := cron.New(cron.WithLocation(loc))
			job := func() {
				if err := a.scheduledSync(ctx); err != nil {
					a.logger.Error(ctx, "scheduled sync failed", "error", err)
				}
			}
			if _, err := c.AddFunc(a.config.SyncSchedule, job); err != nil {
				return fmt.Errorf("sync schedule %q: %w", a.config.SyncSchedule, err)
			}

			go a.StartOnlineStatusWatcher(ctx, pingInterval)

			a.logger.Info(ctx, "sync agent started", "schedule", a.config.SyncSchedule)
			job()
			c.Start()

			<-ctx.Done()
			<-c.Stop().Done()
			a.logger.Info(ctx, "sync agent stopped")
			return nil
		},
	}
	cmd.Flags().DurationVar(&pingInterval, "ping-interval", 30*time.Second, "how often server reachability is checked")
	return cmd
}
