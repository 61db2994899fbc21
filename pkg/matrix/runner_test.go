package matrix

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touchStep(path string) *Step {
	return &Step{Kind: StepCheck, Configuration: "test", Argv: []string{"touch", path}}
}

func TestRunExecutesInOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first")
	second := filepath.Join(dir, "second")

	plan := Plan{touchStep(first), touchStep(second)}
	err := Run(testContext(), plan, RunOptions{Dir: dir})
	require.NoError(t, err)

	assert.FileExists(t, first)
	assert.FileExists(t, second)
}

func TestRunHaltsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	before := filepath.Join(dir, "before")
	after := filepath.Join(dir, "after")

	plan := Plan{
		touchStep(before),
		{Kind: StepTest, Configuration: "test", Argv: []string{"false"}},
		touchStep(after),
	}

	err := Run(testContext(), plan, RunOptions{Dir: dir})
	require.Error(t, err)

	assert.FileExists(t, before)
	assert.NoFileExists(t, after)
	assert.Equal(t, 1, ExitStatus(err))
}

func TestRunPropagatesExitStatus(t *testing.T) {
	plan := Plan{
		{Kind: StepCheck, Argv: []string{"sh", "-c", "exit 3"}},
	}

	err := Run(testContext(), plan, RunOptions{Dir: t.TempDir()})
	require.Error(t, err)
	assert.Equal(t, 3, ExitStatus(err))
}

func TestRunDryRunExecutesNothing(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	plan := Plan{touchStep(marker)}
	err := Run(testContext(), plan, RunOptions{Dir: dir, DryRun: true})
	require.NoError(t, err)

	assert.NoFileExists(t, marker)
}

func TestRunStepEnvironment(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	plan := Plan{{
		Kind: StepCheck,
		Argv: []string{"sh", "-c", "printf '%s %s' \"$FIRST\" \"$SECOND\" > " + out},
		Env:  map[string]string{"FIRST": "from-step"},
	}}

	err := Run(testContext(), plan, RunOptions{
		Dir:      dir,
		ExtraEnv: map[string]string{"FIRST": "from-dotenv", "SECOND": "extra"},
	})
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	// the step's own env wins over the dotenv entries
	assert.Equal(t, "from-step extra", string(content))
}

func TestQuoteArgv(t *testing.T) {
	line := quoteArgv([]string{"cargo", "clippy", "--", "-D", "warnings"})
	assert.Equal(t, "cargo clippy -- -D warnings", line)

	line = quoteArgv([]string{"sh", "-c", "echo 'hello world'"})
	assert.True(t, strings.HasPrefix(line, "sh -c "))
	assert.Contains(t, line, "hello world")
}

func TestExitStatus(t *testing.T) {
	assert.Equal(t, 0, ExitStatus(nil))
	assert.Equal(t, 1, ExitStatus(os.ErrNotExist))
}
