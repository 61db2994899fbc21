package cmd

import (
	"github.com/spf13/cobra"

	"github.com/matrun/matrun/pkg/matrix"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Runs the format check",
	Long:  `Runs the build tool's format subcommand in check mode. Any deviation fails.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}

		ctx := newContext()
		file, dir, err := loadCheckFile(ctx, cmd, nil)
		if err != nil {
			return err
		}

		plan, err := matrix.FmtPlan(file)
		if err != nil {
			return err
		}

		return matrix.Run(ctx, plan, matrix.RunOptions{
			DryRun:   dryRun,
			Dir:      dir,
			ExtraEnv: loadDotenv(dir),
		})
	},
}

func init() {
	fmtCmd.Flags().BoolP("dry", "n", false, "dry run; only print the command, don't execute anything")
	fmtCmd.Flags().StringP("file", "f", "", "path to the check file (default: nearest checks.star)")

	rootCmd.AddCommand(fmtCmd)
}
