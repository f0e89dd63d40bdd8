package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// inspectCommand creates the command that lists every requirement of a
// wheel with the extra and residual marker it was attributed to.
func (c *CLI) inspectCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "inspect <wheel>",
		Short: "Show every requirement of a wheel and whether it applies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner := c.newRunner(ctx, cfg)
			defer runner.Close()

			opts := c.pipelineOptions(cfg, args[0])
			opts.Refresh = refresh
			res, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Read %s %s", res.Metadata.Name, res.Metadata.Version))

			w := cmd.OutOrStdout()
			printTitle(w, res.Metadata.Name+" "+res.Metadata.Version)
			printKeyValue(w, "file", res.Wheel.Path())
			printKeyValue(w, "repository", res.Wheel.RepositoryName())
			printKeyValue(w, "sha256", res.Digest)
			printKeyValue(w, "python", opts.Environment["python_full_version"])
			printKeyValue(w, "platform", opts.Environment["sys_platform"])
			printStats(w, res.Stats.Requirements, res.Stats.Extras, res.CacheInfo.MetadataHit)
			fmt.Fprintln(w)

			if len(res.Metadata.Requirements) == 0 {
				printInfo(w, "No requirements")
			}
			for _, r := range res.Metadata.Requirements {
				printRequirement(w, r.Name, r.Extra, r.Environment, res.View.Applies(r))
			}

			if len(res.Metadata.Extras) > 0 {
				fmt.Fprintln(w)
				printTitle(w, "Extras")
				extras := make([]string, 0, len(res.Report.Extras))
				for e := range res.Report.Extras {
					extras = append(extras, e)
				}
				sort.Strings(extras)
				for _, e := range extras {
					printDetail(w, "%s: %d dependencies", e, len(res.Report.Extras[e]))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-read the wheel even if its metadata is cached")

	return cmd
}
