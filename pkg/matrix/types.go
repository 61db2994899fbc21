package matrix

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
)

// Toolchain describes the external build tool the matrix is run against and the
// toolchain manager used to install the pinned minimum supported version.
type Toolchain struct {
	// Command is the build tool binary ("cargo" by default).
	Command string
	// Manager is the toolchain manager binary ("rustup" by default).
	Manager string
	// Version is the pinned minimum supported toolchain version.
	Version string
	// Subcommands for the individual passes.
	CheckCmd string
	TestCmd  string
	LintCmd  string
	FmtCmd   string
	// LintFlags are passed to the lint subcommand after the "--" separator.
	// The default elevates warnings to errors.
	LintFlags []string
	// FmtFlags are passed to the format subcommand after the "--" separator.
	FmtFlags []string
	// Components the lint pass needs, installed in minimum-supported-version mode.
	Components []string
	// Targets that have to be installed in addition to the targets collected
	// from the configurations.
	Targets []string
}

// Configuration is one entry of the check matrix as declared by configuration()
// in the check file.
type Configuration struct {
	Name      string
	Features  []string
	Target    string
	ExtraArgs []string
	Env       map[string]string
	// Test indicates whether the test pass runs for this configuration. It's
	// forced to false whenever Target is set since cross-compiled test
	// binaries can't execute on the host.
	Test bool
}

// CheckFile contains the processed contents of a checks.star file.
type CheckFile struct {
	Toolchain      Toolchain
	Configurations []*Configuration
	Options        map[string]ScriptOption
}

type ScriptOption struct {
	DefaultValue starlark.String
	Help         string
}

func (o ScriptOption) Default() string {
	return o.DefaultValue.GoString()
}

// Args returns the build arguments shared by every pass of this configuration.
func (c *Configuration) Args() []string {
	args := make([]string, 0, 4+len(c.ExtraArgs))
	if len(c.Features) > 0 {
		args = append(args, "--features", strings.Join(c.Features, ","))
	}
	if c.Target != "" {
		args = append(args, "--target", c.Target)
	}
	args = append(args, c.ExtraArgs...)
	return args
}

// DeriveName builds a readable name for configurations that were declared
// without one.
func (c *Configuration) DeriveName() string {
	parts := make([]string, 0, len(c.Features)+1)
	parts = append(parts, c.Features...)
	if c.Target != "" {
		parts = append(parts, c.Target)
	}
	if len(parts) == 0 {
		return "default"
	}
	return strings.Join(parts, "+")
}

// Implement starlark.Value for *Configuration

// String returns a string representation of the configuration
func (c *Configuration) String() string {
	return fmt.Sprintf("<configuration %s>", c.Name)
}

// Type always returns "configuration" to indicate this type
func (c *Configuration) Type() string {
	return "configuration"
}

// Freeze doesn't do anything since configurations are immutable anyway
func (c *Configuration) Freeze() {}

// Truth always returns true since a configuration can't be nil or None
func (c *Configuration) Truth() starlark.Bool {
	return starlark.True
}

// Hash always returns an error since configurations aren't hashable
func (c *Configuration) Hash() (uint32, error) {
	return 0, eris.New("configuration is not a hashable type")
}
