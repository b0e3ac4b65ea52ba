package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tasksync/internal/client/services"
	"github.com/spf13/cobra"
)

func (a *App) domainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domain",
		Short: "Manage domains (task groups)",
	}
	cmd.AddCommand(a.domainAddCmd(), a.domainListCmd(), a.domainRemoveCmd())
	return cmd
}

func (a *App) domainAddCmd() *cobra.Command {
	var in services.DomainInput

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a domain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = strings.Join(args, " ")
			d, err := a.tasks.AddDomain(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added domain %s %s\n", shortID(d.ID), d.Name)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&in.Color, "color", "", "#RRGGBB color")
	fl.StringVar(&in.Icon, "icon", "", "icon name")
	fl.StringVar(&in.Description, "desc", "", "description")
	fl.BoolVar(&in.IsDefault, "default", false, "use as the default domain")
	fl.IntVar(&in.Order, "order", 0, "sort position")
	return cmd
}

func (a *App) domainListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List domains",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			format, err := resolveOutput(output, w)
			if err != nil {
				return err
			}

			list, err := a.tasks.ListDomains(cmd.Context())
			if err != nil {
				return err
			}
			if format == outputJSON {
				return writeJSONLines(w, list)
			}

			rows := make([][]string, 0, len(list))
			for _, d := range list {
				def := ""
				if d.IsDefault {
					def = "*"
				}
				rows = append(rows, []string{shortID(d.ID), d.Name, d.Color, def})
			}
			return writeTable(w, []string{"ID", "NAME", "COLOR", "DEFAULT"}, rows)
		},
	}
	cmd.Flags().StringVar(&output, "output", outputAuto, "auto, table or json")
	return cmd
}

func (a *App) domainRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := a.resolveDomain(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.tasks.DeleteDomain(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted domain %s\n", shortID(id))
			return nil
		},
	}
}
