package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tabrefresh/tabrefresh/cli/core"
	"github.com/tabrefresh/tabrefresh/tableau"
	"go.uber.org/zap"
)

func init() {
	core.RegisterCommand("refresh", func() *cobra.Command {
		return RefreshCmd()
	})
	core.SetDefaultCommand("refresh")
}

func RefreshCmd() *cobra.Command {
	var flags core.ParamFlags
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Trigger an extract refresh for a workbook or datasource",
		Long: `Sign in with a personal access token, find the workbook or datasource
with the given name in the given project, and start an extract refresh.

This is also what runs when tabrefresh is called without a subcommand.`,
		Example: `  tabrefresh -s https://tableau.example.com -t ci -n Quarterly -p Finance -x workbook
  tabrefresh refresh -s https://tableau.example.com -u marketing -t ci -n Leads -p Sales -x datasource
  TABLEAU_TOKEN_VALUE=... tabrefresh -n Quarterly -p Finance -x workbook -o json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.SiteURLSet = cmd.Flags().Changed("site_url")
			p, err := core.ResolveParams(flags, core.GetConfig(), core.ResolveOptions{RequireProject: true})
			if err != nil {
				return err
			}
			if err := ensureSecret(&p); err != nil {
				return err
			}
			result, err := runRefresh(cmd.Context(), p)
			if err != nil {
				return err
			}
			return core.OutputDocument(result)
		},
	}
	core.BindParamFlags(cmd, &flags)
	return cmd
}

func runRefresh(ctx context.Context, p core.Params) (*core.RefreshResult, error) {
	core.PrintBanner("Refresh Tableau Extracts")
	core.PrintSection("Arguments")
	core.PrintArguments(p)
	core.PrintSection("Authenticate")
	core.SetSentryTag("content_type", string(p.Type))

	var result *core.RefreshResult
	err := withSession(ctx, p, func(ctx context.Context, s *tableau.Session) error {
		title := kindTitle(p.Type)
		refresher := tableau.NewExtractRefresher(s)

		core.PrintSection(fmt.Sprintf("Refresh %s", title))
		core.PrintInfo(fmt.Sprintf("Finding %s LUID for %s/%s", title, p.Project, p.Name))

		var match *tableau.Match
		err := core.RunWithSpinner(fmt.Sprintf("Looking up %s...", p.Type), func() error {
			var err error
			match, err = refresher.Locate(ctx, p.Target())
			return err
		})
		if err != nil {
			return core.Failed("Lookup", err)
		}
		if match.Candidates > 1 {
			core.PrintWarning(fmt.Sprintf("%d %ss named %s exist in project %s; using the first one (%s)",
				match.Candidates, p.Type, p.Name, match.Content.ProjectName, match.Content.ID))
		}
		core.PrintInfo(fmt.Sprintf("%s LUID is %s", title, match.Content.ID))

		core.PrintInfo("Triggering Extract Refresh")
		var job *tableau.Job
		err = core.RunWithSpinner("Triggering extract refresh...", func() error {
			var err error
			job, err = refresher.Trigger(ctx, match.Content)
			return err
		})
		if err != nil {
			return core.Failed("Refresh", err)
		}
		core.Logger().Debug("refresh job created", zap.String("job_id", job.ID), zap.String("content_id", match.Content.ID))
		core.PrintSuccess(fmt.Sprintf("Refresh Triggered. Job ID is %s", job.ID))

		result = &core.RefreshResult{Content: match.Content, Job: *job}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
