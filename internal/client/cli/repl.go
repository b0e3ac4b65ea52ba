package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// runREPL reads commands line by line and runs each through exec. The loop
// ends on EOF, "exit" or "quit". Command errors are printed and the loop
// goes on.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, prompt func() string, exec func(context.Context, []string) error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s> ", prompt())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		case "shell", "run":
			fmt.Fprintf(out, "%s is not available inside the shell\n", parts[0])
			continue
		}

		if err := exec(ctx, parts); err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (a *App) prompt() string {
	return fmt.Sprintf("tasksync (%s)", a.Mode())
}

func (a *App) shellCmd() *cobra.Command {
	var pingInterval time.Duration

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if pingInterval > 0 {
				go a.StartOnlineStatusWatcher(ctx, pingInterval)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "tasksync shell (type 'help' for commands, 'exit' to leave)")
			runREPL(ctx, a.in, cmd.OutOrStdout(), a.prompt, a.Run)
			return nil
		},
	}
	cmd.Flags().DurationVar(&pingInterval, "ping-interval", 30*time.Second, "how often server reachability is checked, 0 disables")
	return cmd
}
