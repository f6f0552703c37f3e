package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tabrefresh/tabrefresh/cli/core"
	"github.com/tabrefresh/tabrefresh/tableau"
)

func init() {
	core.RegisterCommand("list", func() *cobra.Command {
		return ListCmd()
	})
}

func ListCmd() *cobra.Command {
	var flags core.ParamFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List workbooks or datasources with a given name",
		Long: `List every workbook or datasource with the given name on the site, in
all projects unless --project is set. Nothing is refreshed.

Use it to check which item a refresh would pick when a name is used more
than once.`,
		Example: `  tabrefresh list -s https://tableau.example.com -t ci -n Quarterly -x workbook
  tabrefresh list -n Quarterly -x workbook -p finance -o yaml`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.SiteURLSet = cmd.Flags().Changed("site_url")
			p, err := core.ResolveParams(flags, core.GetConfig(), core.ResolveOptions{})
			if err != nil {
				return err
			}
			if err := ensureSecret(&p); err != nil {
				return err
			}
			result, err := runList(cmd.Context(), p)
			if err != nil {
				return err
			}
			return core.OutputDocument(result)
		},
	}
	core.BindParamFlags(cmd, &flags)
	return cmd
}

func runList(ctx context.Context, p core.Params) (*core.ListResult, error) {
	core.PrintBanner("List Tableau Content")
	core.PrintSection("Arguments")
	core.PrintArguments(p)
	core.PrintSection("Authenticate")

	result := &core.ListResult{Items: []tableau.Content{}}
	err := withSession(ctx, p, func(ctx context.Context, s *tableau.Session) error {
		var items []tableau.Content
		err := core.RunWithSpinner(fmt.Sprintf("Listing %s...", p.Type.Plural()), func() error {
			var err error
			items, err = s.ListByName(ctx, p.Type, p.Name)
			return err
		})
		if err != nil {
			return core.Failed("List", err)
		}
		if p.Project != "" {
			items = tableau.FilterByProject(items, p.Project)
		}
		if len(items) > 0 {
			result.Items = items
		}

		core.PrintSection(fmt.Sprintf("%s named %s", kindTitle(p.Type)+"s", p.Name))
		if core.IsQuiet() {
			return nil
		}
		if len(items) == 0 {
			core.PrintWarning(fmt.Sprintf("no %s found with the name %s", p.Type, p.Name))
			return nil
		}
		core.PrintContentTable(items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
