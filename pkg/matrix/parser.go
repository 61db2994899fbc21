package matrix

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.starlark.net/starlark"
)

type parserCtx struct {
	ctx          context.Context
	options      map[string]ScriptOption
	optionValues map[string]string
	envOverrides map[string]string
	yamlCache    map[string]interface{}
	filepath     string
	projectRoot  string
	toolchain    *Toolchain
	configs      []*Configuration
	initPhase    bool
}

// * Helpers

func getCtx(thread *starlark.Thread) *parserCtx {
	return thread.Local("parserCtx").(*parserCtx)
}

type starlarkIterable interface {
	Len() int
	Iterate() starlark.Iterator
}

func starlarkIterable2stringSlice(input starlarkIterable, field string) ([]string, error) {
	if value, ok := input.(*starlark.List); ok && value == nil {
		return []string{}, nil
	}

	result := make([]string, 0, input.Len())
	iter := input.Iterate()
	defer iter.Done()

	var item starlark.Value
	for iter.Next(&item) {
		switch value := item.(type) {
		case starlark.String:
			result = append(result, value.GoString())
		default:
			return nil, eris.Errorf("expected all items in %s to be strings but found %s", field, item.Type())
		}
	}
	return result, nil
}

func info(thread *starlark.Thread, msg string, args ...interface{}) {
	ctx := getCtx(thread)
	pos := thread.CallFrame(1).Pos

	filepath := simplifyPath(ctx, ctx.filepath)

	zerolog.Ctx(ctx.ctx).Info().
		Msgf("%s:%d:%d: %s", filepath, pos.Line, pos.Col, fmt.Sprintf(msg, args...))
}

func warn(thread *starlark.Thread, msg string, args ...interface{}) {
	ctx := getCtx(thread)
	pos := thread.CallFrame(1).Pos

	filepath := simplifyPath(ctx, ctx.filepath)

	zerolog.Ctx(ctx.ctx).Warn().
		Msgf("%s:%d:%d: %s", filepath, pos.Line, pos.Col, fmt.Sprintf(msg, args...))
}

// DefaultToolchain returns the toolchain settings used when the check file
// doesn't declare any.
func DefaultToolchain() Toolchain {
	return Toolchain{
		Command:    "cargo",
		Manager:    "rustup",
		CheckCmd:   "check",
		TestCmd:    "test",
		LintCmd:    "clippy",
		FmtCmd:     "fmt",
		LintFlags:  []string{"-D", "warnings"},
		FmtFlags:   []string{"--check"},
		Components: []string{"clippy"},
	}
}

// LoadFile parses the given check file and returns the declared toolchain and
// configurations. The script's configure function is called to collect the
// configurations (declarations in the global scope are rejected).
func LoadFile(ctx context.Context, filename, projectRoot string, options map[string]string) (*CheckFile, error) {
	script, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", filename)
	}

	return loadScript(ctx, filename, projectRoot, script, options)
}

// LoadDefault builds the check file that's used when no checks.star exists:
// the embedded default matrix.
func LoadDefault(ctx context.Context, projectRoot string, options map[string]string) (*CheckFile, error) {
	return loadScript(ctx, "<builtin>", projectRoot, []byte(defaultCheckFile), options)
}

func loadScript(ctx context.Context, filename, projectRoot string, script []byte, options map[string]string) (*CheckFile, error) {
	projectRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, err
	}

	if filename != "<builtin>" {
		filename, err = filepath.Abs(filename)
		if err != nil {
			return nil, err
		}
	}

	builtins := starlark.StringDict{
		"OS":            starlark.String(runtime.GOOS),
		"ARCH":          starlark.String(runtime.GOARCH),
		"info":          starlark.NewBuiltin("info", starInfo),
		"warn":          starlark.NewBuiltin("warn", starWarn),
		"error":         starlark.NewBuiltin("error", starError),
		"option":        starlark.NewBuiltin("option", option),
		"getenv":        starlark.NewBuiltin("getenv", getenv),
		"setenv":        starlark.NewBuiltin("setenv", setenv),
		"read_yaml":     starlark.NewBuiltin("read_yaml", readYaml),
		"isdir":         starlark.NewBuiltin("isdir", starIsdir),
		"isfile":        starlark.NewBuiltin("isfile", starIsfile),
		"toolchain":     starlark.NewBuiltin("toolchain", toolchain),
		"configuration": starlark.NewBuiltin("configuration", configuration),
	}

	thread := &starlark.Thread{
		Name: "main",
		Print: func(thread *starlark.Thread, msg string) {
			zerolog.Ctx(ctx).Info().Str("thread", thread.Name).Msg(msg)
		},
	}
	threadCtx := parserCtx{
		ctx:          ctx,
		filepath:     filename,
		projectRoot:  projectRoot,
		options:      make(map[string]ScriptOption),
		optionValues: options,
		envOverrides: make(map[string]string),
		yamlCache:    make(map[string]interface{}),
		configs:      make([]*Configuration, 0),
		initPhase:    true,
	}
	thread.SetLocal("parserCtx", &threadCtx)

	globals, err := starlark.ExecFile(thread, simplifyPath(&threadCtx, filename), script, builtins)
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			return nil, eris.Errorf("failed to execute %s:\n%s", simplifyPath(&threadCtx, filename), evalError.Backtrace())
		}
		return nil, eris.Wrap(err, "failed to execute")
	}

	configure, ok := globals["configure"]
	if !ok {
		return nil, eris.Errorf("%s did not declare a configure function", simplifyPath(&threadCtx, filename))
	}

	configureFunc, ok := configure.(starlark.Callable)
	if !ok {
		return nil, eris.Errorf("%s did declare a configure value but it's not a function", simplifyPath(&threadCtx, filename))
	}

	threadCtx.initPhase = false
	_, err = starlark.Call(thread, configureFunc, make(starlark.Tuple, 0), make([]starlark.Tuple, 0))
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			return nil, eris.New(evalError.Backtrace())
		}
		return nil, eris.Wrapf(err, "failed configure call in %s", simplifyPath(&threadCtx, filename))
	}

	if len(threadCtx.configs) == 0 {
		return nil, eris.Errorf("%s declared no configurations", simplifyPath(&threadCtx, filename))
	}

	file := CheckFile{
		Configurations: threadCtx.configs,
		Options:        threadCtx.options,
	}

	if threadCtx.toolchain != nil {
		file.Toolchain = *threadCtx.toolchain
	} else {
		file.Toolchain = DefaultToolchain()
	}

	seen := make(map[string]bool, len(file.Configurations))
	for _, cfg := range file.Configurations {
		if seen[cfg.Name] {
			return nil, eris.Errorf("configuration %s was declared twice", cfg.Name)
		}
		seen[cfg.Name] = true

		for name, value := range threadCtx.envOverrides {
			_, present := cfg.Env[name]
			if !present {
				cfg.Env[name] = value
			}
		}
	}

	return &file, nil
}

// FindCheckFile searches the given directory and its parents for the first
// checks.star file. Returns os.ErrNotExist if none is found.
func FindCheckFile(dir string) (string, error) {
	path, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		checkPath := filepath.Join(path, "checks.star")
		_, err := os.Stat(checkPath)
		if err == nil {
			return checkPath, nil
		}
		if !eris.Is(err, os.ErrNotExist) {
			return "", eris.Wrapf(err, "failed to check %s", checkPath)
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", os.ErrNotExist
		}
		path = parent
	}
}
