package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/quota"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
	"github.com/spf13/cobra"
)

func printUsage(w io.Writer, u *syncapi.QuotaResponse) {
	fmt.Fprintf(w, "%s (%s plan): %d of %d used, %d left", u.Action, u.Plan, u.Used, u.Limit, u.Remaining)
	if u.ResetDescription != "" {
		fmt.Fprintf(w, ", %s", u.ResetDescription)
	}
	fmt.Fprintln(w)
}

func (a *App) quotaCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "quota [sync|export|analysis]",
		Short: "Show quota usage",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actions := []quota.Action{quota.ActionExport, quota.ActionAnalysis}
			if remote {
				actions = append([]quota.Action{quota.ActionSync}, actions...)
			}
			if len(args) == 1 {
				actions = []quota.Action{quota.Action(args[0])}
			}

			for _, action := range actions {
				// only the server meters sync
				if remote || action == quota.ActionSync {
					u, err := a.api.Usage(ctx, string(action))
					if err != nil {
						return err
					}
					printUsage(cmd.OutOrStdout(), u)
					continue
				}

				u, err := a.quotas.Usage(ctx, action)
				if err != nil {
					return err
				}
				printUsage(cmd.OutOrStdout(), &syncapi.QuotaResponse{
					Action:           string(action),
					Plan:             string(u.Plan),
					Used:             u.Used,
					Limit:            u.Limit,
					Remaining:        u.Remaining,
					ResetDescription: u.ResetDescription,
				})
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "ask the server instead of the local meter")
	return cmd
}

func (a *App) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export server-side data to a downloadable JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			adm, err := a.quotas.Check(ctx, quota.ActionExport)
			if err != nil {
				return err
			}
			if !adm.Allowed {
				return &common.EntitlementError{Message: adm.Message}
			}

			resp, err := a.api.Export(ctx)
			if err != nil {
				return err
			}
			if _, err := a.quotas.Consume(ctx, quota.ActionExport); err != nil {
				a.logger.Warn(ctx, "export use not recorded", "error", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d tasks and %d domains\n%s\nlink expires %s\n",
				resp.Tasks, resp.Domains, resp.URL, resp.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
}
