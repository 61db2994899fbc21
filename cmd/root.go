package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matrun/matrun/pkg/matrix"
)

var rootCmd = &cobra.Command{
	Use:   "matrun",
	Short: "Matrix check runner",
	Long: `matrun expands a matrix of build configurations into check, test and lint
passes against an external build tool and runs them strictly in order,
aborting on the first failure. The matrix is declared in the first
checks.star file found in the current directory or one of its parents;
without one, the built-in default matrix is used.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and terminates the process with the failing command's
// exit status (or 1 for any other error).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(matrix.ExitStatus(err))
	}
}

func newContext() context.Context {
	logger := zerolog.New(NewConsoleWriter())
	return logger.WithContext(context.Background())
}

// loadCheckFile loads the check file given by --file, the nearest checks.star
// or the built-in defaults, in that order. It returns the parsed file and the
// directory every step runs in.
func loadCheckFile(ctx context.Context, cmd *cobra.Command, options map[string]string) (*matrix.CheckFile, string, error) {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", eris.Wrap(err, "failed to retrieve the current working directory")
		}

		path, err = matrix.FindCheckFile(wd)
		if eris.Is(err, os.ErrNotExist) {
			file, err := matrix.LoadDefault(ctx, wd, options)
			return file, wd, err
		}
		if err != nil {
			return nil, "", err
		}
	}

	dir := filepath.Dir(path)
	file, err := matrix.LoadFile(ctx, path, dir, options)
	return file, dir, err
}
