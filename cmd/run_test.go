package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCheckFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "checks.star")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunRejectsUnknownToken(t *testing.T) {
	rootCmd.SetArgs([]string{"run", "--dry", "bogus"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected argument")
}

func TestRunDryMSRV(t *testing.T) {
	path := writeCheckFile(t, `
toolchain(version = "1.63.0")

def configure():
    configuration()
    configuration(target = "wasm32-unknown-unknown")
`)

	rootCmd.SetArgs([]string{"run", "--dry", "--file", path, "msrv"})
	require.NoError(t, rootCmd.Execute())
}

func TestRunMSRVWithoutPinFails(t *testing.T) {
	path := writeCheckFile(t, `
def configure():
    configuration()
`)

	rootCmd.SetArgs([]string{"run", "--dry", "--file", path, "msrv"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pinned toolchain version")
}

func TestFmtDry(t *testing.T) {
	path := writeCheckFile(t, `
def configure():
    configuration()
`)

	rootCmd.SetArgs([]string{"fmt", "--dry", "--file", path})
	require.NoError(t, rootCmd.Execute())
}
