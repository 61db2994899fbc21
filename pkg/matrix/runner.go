package matrix

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// RunOptions control plan execution.
type RunOptions struct {
	// DryRun only prints the composed commands without executing anything.
	DryRun bool
	// Quiet hides command output behind a progress bar and only dumps it when
	// a step fails.
	Quiet bool
	// Dir is the working directory for every step.
	Dir string
	// ExtraEnv is merged into each step's environment. Per-configuration env
	// entries win over these.
	ExtraEnv map[string]string
}

func stepEnviron(step *Step, extra map[string]string) expand.Environ {
	envVars := os.Environ()

	for name, value := range extra {
		if _, overridden := step.Env[name]; !overridden {
			envVars = append(envVars, fmt.Sprintf("%s=%s", name, value))
		}
	}

	for name, value := range step.Env {
		envVars = append(envVars, fmt.Sprintf("%s=%s", name, value))
	}

	return expand.ListEnviron(envVars...)
}

func quoteArgv(argv []string) string {
	parts := make([]string, len(argv))
	for idx, arg := range argv {
		quoted, err := syntax.Quote(arg, syntax.LangPOSIX)
		if err != nil {
			quoted = arg
		}
		parts[idx] = quoted
	}
	return strings.Join(parts, " ")
}

// Run executes the plan strictly in order and aborts on the first failing
// step. The returned error carries the failing command's exit status which
// can be recovered with ExitStatus.
func Run(ctx context.Context, plan Plan, opts RunOptions) error {
	var bar *progressbar.ProgressBar
	if opts.Quiet && !opts.DryRun {
		bar = progressbar.NewOptions(len(plan),
			progressbar.OptionSetDescription("running checks"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)
	}

	parser := syntax.NewParser()
	for _, step := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}

		logStep := zerolog.Ctx(ctx).Info().
			Str("step", step.Kind.String()).
			Bool("command", true)
		if step.Configuration != "" {
			logStep = logStep.Str("configuration", step.Configuration)
		}
		logStep.Msg(step.Command())

		if opts.DryRun {
			continue
		}

		var stdout, stderr io.Writer = os.Stdout, os.Stderr
		var buffer bytes.Buffer
		if opts.Quiet {
			stdout = &buffer
			stderr = &buffer
		}

		runner, err := interp.New(
			interp.Dir(opts.Dir),
			interp.Env(stepEnviron(step, opts.ExtraEnv)),
			interp.StdIO(nil, stdout, stderr),
			interp.Params("-e"),
		)
		if err != nil {
			return eris.Wrap(err, "failed to initialize runner")
		}

		line := quoteArgv(step.Argv)
		file, err := parser.Parse(strings.NewReader(line), step.Kind.String())
		if err != nil {
			return eris.Wrapf(err, "failed to parse command %s", line)
		}

		if err := runner.Run(ctx, file); err != nil {
			if opts.Quiet {
				os.Stderr.Write(buffer.Bytes())
			}

			logErr := zerolog.Ctx(ctx).Error().
				Str("step", step.Kind.String())
			if step.Configuration != "" {
				logErr = logErr.Str("configuration", step.Configuration)
			}
			logErr.Msgf("command failed: %s", line)

			// return the raw error so that the exit status survives
			return err
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return nil
}

// ExitStatus extracts the exit code that the process should terminate with.
// A failing step propagates its own exit status; every other error maps to 1.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	if status, ok := interp.IsExitStatus(err); ok {
		return int(status)
	}
	return 1
}
