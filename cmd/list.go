package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the configuration matrix",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newContext()
		file, _, err := loadCheckFile(ctx, cmd, nil)
		if err != nil {
			return err
		}

		tc := file.Toolchain
		fmt.Printf("Build tool: %s (managed by %s)\n", tc.Command, tc.Manager)
		if tc.Version != "" {
			fmt.Printf("Minimum supported version: %s\n", tc.Version)
		}
		fmt.Println()

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Configuration", "Features", "Target", "Test", "Extra args")

		for _, cfg := range file.Configurations {
			test := "yes"
			if !cfg.Test {
				test = "no"
			}

			table.Append(cfg.Name, strings.Join(cfg.Features, ","), cfg.Target, test, strings.Join(cfg.ExtraArgs, " "))
		}

		table.Render()
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("file", "f", "", "path to the check file (default: nearest checks.star)")

	rootCmd.AddCommand(listCmd)
}
