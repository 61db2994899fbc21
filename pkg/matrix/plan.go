package matrix

import (
	"strings"

	"github.com/rotisserie/eris"
)

// StepKind describes which pass a step belongs to.
type StepKind int

const (
	// StepInstall installs the pinned toolchain or one of its components.
	StepInstall StepKind = iota
	// StepCheck runs the type-check pass.
	StepCheck
	// StepTest runs the test pass.
	StepTest
	// StepLint runs the lint pass with warnings elevated to errors.
	StepLint
	// StepFmt runs the format check.
	StepFmt
)

func (k StepKind) String() string {
	switch k {
	case StepInstall:
		return "install"
	case StepCheck:
		return "check"
	case StepTest:
		return "test"
	case StepLint:
		return "lint"
	case StepFmt:
		return "fmt"
	}
	return "unknown"
}

// Step is a single command invocation of a plan.
type Step struct {
	Kind StepKind
	// Configuration holds the name of the matrix entry this step belongs to.
	// It's empty for install and fmt steps.
	Configuration string
	Argv          []string
	Env           map[string]string
}

// Command returns the step's argv as a single shell-ish line for display.
func (s *Step) Command() string {
	return strings.Join(s.Argv, " ")
}

// Plan is an ordered list of steps. Steps always run strictly in order.
type Plan []*Step

// PlanOptions control how a check file is expanded into a plan.
type PlanOptions struct {
	// MSRV selects minimum-supported-version mode: the pinned toolchain is
	// installed first and every build tool invocation runs against it.
	MSRV bool
}

// BuildPlan expands the check file's matrix into the ordered list of steps to
// run: per configuration a check pass, a test pass (unless the configuration
// cross-compiles) and a lint pass.
func BuildPlan(file *CheckFile, opts PlanOptions) (Plan, error) {
	tc := file.Toolchain
	if tc.Command == "" {
		return nil, eris.New("no build tool declared")
	}
	if opts.MSRV && tc.Version == "" {
		return nil, eris.New("minimum-supported-version mode requires a pinned toolchain version")
	}

	plan := make(Plan, 0, len(file.Configurations)*3+4)
	if opts.MSRV {
		plan = append(plan, installSteps(file)...)
	}

	for _, cfg := range file.Configurations {
		args := cfg.Args()

		plan = append(plan, &Step{
			Kind:          StepCheck,
			Configuration: cfg.Name,
			Argv:          tc.commandArgv(opts.MSRV, tc.CheckCmd, args...),
			Env:           cfg.Env,
		})

		if cfg.Test {
			plan = append(plan, &Step{
				Kind:          StepTest,
				Configuration: cfg.Name,
				Argv:          tc.commandArgv(opts.MSRV, tc.TestCmd, args...),
				Env:           cfg.Env,
			})
		}

		lintArgs := args
		if len(tc.LintFlags) > 0 {
			lintArgs = append(append([]string{}, args...), "--")
			lintArgs = append(lintArgs, tc.LintFlags...)
		}
		plan = append(plan, &Step{
			Kind:          StepLint,
			Configuration: cfg.Name,
			Argv:          tc.commandArgv(opts.MSRV, tc.LintCmd, lintArgs...),
			Env:           cfg.Env,
		})
	}

	return plan, nil
}

// FmtPlan builds the single-step plan for the format check.
func FmtPlan(file *CheckFile) (Plan, error) {
	tc := file.Toolchain
	if tc.Command == "" {
		return nil, eris.New("no build tool declared")
	}

	args := []string{"--all"}
	if len(tc.FmtFlags) > 0 {
		args = append(args, "--")
		args = append(args, tc.FmtFlags...)
	}

	return Plan{{
		Kind: StepFmt,
		Argv: tc.commandArgv(false, tc.FmtCmd, args...),
	}}, nil
}

// commandArgv composes a build tool invocation, optionally prefixed with the
// pinned toolchain version selector.
func (t Toolchain) commandArgv(msrv bool, subcommand string, args ...string) []string {
	argv := make([]string, 0, len(args)+3)
	argv = append(argv, t.Command)
	if msrv {
		argv = append(argv, "+"+t.Version)
	}
	argv = append(argv, subcommand)
	argv = append(argv, args...)
	return argv
}
