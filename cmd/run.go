package cmd

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/matrun/matrun/pkg/matrix"
)

// MSRVToken selects minimum-supported-version mode on the command line.
const MSRVToken = "msrv"

var runCmd = &cobra.Command{
	Use:   "run [msrv] [option=value ...]",
	Short: "Runs check, test and lint for every matrix configuration",
	Long: `Runs the check matrix: for every declared configuration a type-check, a test
pass (skipped for cross-compiled configurations) and a lint pass with warnings
elevated to errors. Passing the "msrv" token installs the pinned
minimum-supported toolchain version first and runs everything against it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}

		quiet, err := cmd.Flags().GetBool("quiet")
		if err != nil {
			return err
		}

		msrv := false
		options := make(map[string]string)
		for _, part := range args {
			pos := strings.Index(part, "=")
			switch {
			case pos > -1:
				options[part[:pos]] = part[pos+1:]
			case part == MSRVToken:
				msrv = true
			default:
				return eris.Errorf("unexpected argument %s", part)
			}
		}

		ctx := newContext()
		file, dir, err := loadCheckFile(ctx, cmd, options)
		if err != nil {
			return err
		}

		plan, err := matrix.BuildPlan(file, matrix.PlanOptions{MSRV: msrv})
		if err != nil {
			return err
		}

		return matrix.Run(ctx, plan, matrix.RunOptions{
			DryRun:   dryRun,
			Quiet:    quiet,
			Dir:      dir,
			ExtraEnv: loadDotenv(dir),
		})
	},
}

func init() {
	runCmd.Flags().BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
	runCmd.Flags().BoolP("quiet", "q", false, "hide command output behind a progress bar, dump it on failure")
	runCmd.Flags().StringP("file", "f", "", "path to the check file (default: nearest checks.star)")

	rootCmd.AddCommand(runCmd)
}
