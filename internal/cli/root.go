package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/wheeltool/pkg/errors"
)

// reportCommand creates the command that prints a wheel's dependency report.
func (c *CLI) reportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wheeltool <wheel>",
		Short: "Extract dependency metadata from a Python wheel",
		Long: `wheeltool reads the dependency metadata of a Python wheel and prints the
requirements that apply to the target environment as JSON:

  {"requires": [...], "extras": {"<extra>": [...]}}

Environment markers are evaluated for the running platform with CPython 3.12
unless overridden by --python-version, --platform or the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          exactlyOneWheel,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner := c.newRunner(ctx, cfg)
			defer runner.Close()

			res, err := runner.Execute(ctx, c.pipelineOptions(cfg, args[0]))
			if err != nil {
				return err
			}
			logger.Debug("report ready",
				"wheel", res.Wheel.Distribution(),
				"requires", len(res.Report.Requires),
				"extras", len(res.Report.Extras),
				"cached", res.CacheInfo.MetadataHit)

			return json.NewEncoder(cmd.OutOrStdout()).Encode(res.Report)
		},
	}
}

// exactlyOneWheel prints usage to stderr when the argument count is wrong.
func exactlyOneWheel(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return nil
	}
	cmd.SetOut(cmd.ErrOrStderr())
	_ = cmd.Usage()
	return errs.New(errs.ErrCodeInvalidInput, "expected exactly one wheel path, got %d arguments", len(args))
}
