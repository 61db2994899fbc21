package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCheckFile() *CheckFile {
	tc := DefaultToolchain()
	tc.Version = "1.63.0"

	return &CheckFile{
		Toolchain: tc,
		Configurations: []*Configuration{
			{Name: "default", Test: true, Env: map[string]string{}},
			{Name: "wasm", Target: "wasm32-unknown-unknown", Env: map[string]string{}},
			{Name: "tracing", Features: []string{"tracing"}, Test: true, Env: map[string]string{}},
			{Name: "tracing-wasm", Features: []string{"tracing"}, Target: "wasm32-unknown-unknown", Env: map[string]string{}},
		},
	}
}

func stepsOfKind(plan Plan, kind StepKind) []*Step {
	result := make([]*Step, 0)
	for _, step := range plan {
		if step.Kind == kind {
			result = append(result, step)
		}
	}
	return result
}

func TestBuildPlanChecksEveryConfigurationOnce(t *testing.T) {
	plan, err := BuildPlan(testCheckFile(), PlanOptions{})
	require.NoError(t, err)

	checks := stepsOfKind(plan, StepCheck)
	require.Len(t, checks, 4)

	names := make([]string, 0, len(checks))
	for _, step := range checks {
		names = append(names, step.Configuration)
	}
	assert.Equal(t, []string{"default", "wasm", "tracing", "tracing-wasm"}, names)

	assert.Equal(t, []string{"cargo", "check"}, checks[0].Argv)
	assert.Equal(t, []string{"cargo", "check", "--target", "wasm32-unknown-unknown"}, checks[1].Argv)
	assert.Equal(t, []string{"cargo", "check", "--features", "tracing"}, checks[2].Argv)
	assert.Equal(t, []string{"cargo", "check", "--features", "tracing", "--target", "wasm32-unknown-unknown"}, checks[3].Argv)
}

func TestBuildPlanSkipsTestsForCrossTargets(t *testing.T) {
	plan, err := BuildPlan(testCheckFile(), PlanOptions{})
	require.NoError(t, err)

	tests := stepsOfKind(plan, StepTest)
	require.Len(t, tests, 2)
	assert.Equal(t, "default", tests[0].Configuration)
	assert.Equal(t, "tracing", tests[1].Configuration)
}

func TestBuildPlanLintsWithWarningsAsErrors(t *testing.T) {
	plan, err := BuildPlan(testCheckFile(), PlanOptions{})
	require.NoError(t, err)

	lints := stepsOfKind(plan, StepLint)
	require.Len(t, lints, 4)
	for _, step := range lints {
		assert.Equal(t, "clippy", step.Argv[1], step.Command())
		require.GreaterOrEqual(t, len(step.Argv), 4, step.Command())
		assert.Equal(t, []string{"--", "-D", "warnings"}, step.Argv[len(step.Argv)-3:], step.Command())
	}
}

func TestBuildPlanStepOrderWithinConfiguration(t *testing.T) {
	plan, err := BuildPlan(testCheckFile(), PlanOptions{})
	require.NoError(t, err)

	// check -> test -> lint per configuration, configurations in declaration order
	kinds := make([]StepKind, 0, len(plan))
	for _, step := range plan {
		kinds = append(kinds, step.Kind)
	}
	assert.Equal(t, []StepKind{
		StepCheck, StepTest, StepLint,
		StepCheck, StepLint,
		StepCheck, StepTest, StepLint,
		StepCheck, StepLint,
	}, kinds)
}

func TestBuildPlanMSRVInstallsFirst(t *testing.T) {
	plan, err := BuildPlan(testCheckFile(), PlanOptions{MSRV: true})
	require.NoError(t, err)

	installs := stepsOfKind(plan, StepInstall)
	require.NotEmpty(t, installs)

	// install steps have to precede every check/test/lint step
	lastInstall := -1
	firstOther := len(plan)
	for idx, step := range plan {
		if step.Kind == StepInstall {
			lastInstall = idx
		} else if idx < firstOther {
			firstOther = idx
		}
	}
	assert.Less(t, lastInstall, firstOther)

	assert.Equal(t, []string{"rustup", "toolchain", "install", "1.63.0", "--profile", "minimal"}, installs[0].Argv)
	assert.Equal(t, []string{"rustup", "component", "add", "clippy", "--toolchain", "1.63.0"}, installs[1].Argv)

	// the wasm target is used by two configurations but only installed once
	targetAdds := 0
	for _, step := range installs {
		if step.Argv[1] == "target" {
			targetAdds++
			assert.Equal(t, []string{"rustup", "target", "add", "wasm32-unknown-unknown", "--toolchain", "1.63.0"}, step.Argv)
		}
	}
	assert.Equal(t, 1, targetAdds)
}

func TestBuildPlanMSRVPinsEveryInvocation(t *testing.T) {
	plan, err := BuildPlan(testCheckFile(), PlanOptions{MSRV: true})
	require.NoError(t, err)

	for _, step := range plan {
		if step.Kind == StepInstall {
			continue
		}
		require.Greater(t, len(step.Argv), 2, step.Command())
		assert.Equal(t, "cargo", step.Argv[0])
		assert.Equal(t, "+1.63.0", step.Argv[1], step.Command())
	}
}

func TestBuildPlanMSRVRequiresVersion(t *testing.T) {
	file := testCheckFile()
	file.Toolchain.Version = ""

	_, err := BuildPlan(file, PlanOptions{MSRV: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pinned toolchain version")
}

func TestFmtPlan(t *testing.T) {
	plan, err := FmtPlan(testCheckFile())
	require.NoError(t, err)

	require.Len(t, plan, 1)
	assert.Equal(t, StepFmt, plan[0].Kind)
	assert.Equal(t, []string{"cargo", "fmt", "--all", "--", "--check"}, plan[0].Argv)
}
