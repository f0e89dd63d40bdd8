package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wheeltool/pkg/marker"
)

// splitResult is the JSON printed by split-marker.
// Applies and Variables are only set with --evaluate.
type splitResult struct {
	Extra       string   `json:"extra"`
	Environment string   `json:"environment"`
	Applies     *bool    `json:"applies,omitempty"`
	Variables   []string `json:"variables,omitempty"`
}

// splitMarkerCommand creates the command that splits the extra clause off a
// single environment marker.
func (c *CLI) splitMarkerCommand() *cobra.Command {
	var evaluate bool

	cmd := &cobra.Command{
		Use:   "split-marker <marker>",
		Short: "Split the extra clause off an environment marker",
		Example: `  wheeltool split-marker 'python_version < "3.8" and extra == "test"'
  {"extra":"test","environment":"python_version < \"3.8\""}

  wheeltool split-marker --evaluate --python-version 3.7 'python_version < "3.8" and extra == "test"'
  {"extra":"test","environment":"python_version < \"3.8\"","applies":true,"variables":["python_version"]}`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := marker.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			res, err := marker.SplitExtra(tree)
			if err != nil {
				return err
			}
			out := splitResult{Extra: res.Extra, Environment: res.Remaining.String()}

			if evaluate {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				env := c.environment(cfg)
				applies := res.Remaining.Evaluate(env)
				out.Applies = &applies
				out.Variables = res.Remaining.Variables()
				loggerFromContext(cmd.Context()).Debug("evaluated",
					"environment", out.Environment, "applies", applies, "variables", out.Variables)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			return enc.Encode(out)
		},
	}

	cmd.Flags().BoolVar(&evaluate, "evaluate", false, "also evaluate the remaining marker for the target environment")

	return cmd
}
