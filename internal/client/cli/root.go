package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tasksync",
		Short: "Offline-first task list with optional server sync",
		Long: `tasksync keeps tasks and domains in a local SQLite replica.

Edits work offline. "sync" replicates them with the server, "run" keeps
syncing on the configured schedule.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.editCmd(),
		a.doneCmd(),
		a.removeCmd(),
		a.domainCmd(),
		a.syncCmd(),
		a.resyncCmd(),
		a.runCmd(),
		a.quotaCmd(),
		a.exportCmd(),
		a.shellCmd(),
	)
	return root
}
