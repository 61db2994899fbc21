package matrix

import (
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
	"gopkg.in/yaml.v3"
)

func starInfo(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	info(thread, message)
	return starlark.None, nil
}

func starWarn(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	warn(thread, message)
	return starlark.None, nil
}

func starError(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	return nil, eris.New(message)
}

func option(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var defaultValue starlark.String
	var help string

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "default?", &defaultValue, "help?", &help)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	if !ctx.initPhase {
		return nil, eris.New("can only be called during the init phase (in the global scope)")
	}

	ctx.options[name] = ScriptOption{
		DefaultValue: defaultValue,
		Help:         help,
	}

	value, ok := ctx.optionValues[name]
	if ok {
		return starlark.String(value), nil
	}

	return defaultValue, nil
}

func getenv(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var key string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &key)
	if err != nil {
		return nil, err
	}

	envOverrides := getCtx(thread).envOverrides
	value, ok := envOverrides[key]
	if !ok {
		value = os.Getenv(key)
	}

	return starlark.String(value), nil
}

func setenv(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var key string
	var value string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &key, &value)
	if err != nil {
		return nil, err
	}

	envOverrides := getCtx(thread).envOverrides
	envOverrides[key] = value

	return starlark.True, nil
}

func readYaml(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var yamlFile string
	var yamlKey string
	var defaultValue starlark.Value

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &yamlFile, &yamlKey, &defaultValue)
	if err != nil {
		return nil, err
	}

	yamlFile = normalizePath(getCtx(thread), yamlFile)

	cache := getCtx(thread).yamlCache
	doc, loaded := cache[yamlFile]
	if !loaded {
		content, err := os.ReadFile(yamlFile)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to open file %s", yamlFile)
		}

		err = yaml.Unmarshal(content, &doc)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to parse file %s", yamlFile)
		}

		cache[yamlFile] = doc
	}

	// parse the key
	value := reflect.ValueOf(doc)
	for _, key := range strings.Split(yamlKey, ".") {
		if value.Kind() == reflect.Interface {
			value = value.Elem()
		}

		switch value.Kind() {
		case reflect.Map:
			value = value.MapIndex(reflect.ValueOf(key))
		case reflect.Slice:
			idx, err := strconv.Atoi(key)
			if err != nil || idx >= value.Len() {
				value = reflect.ValueOf(nil)
				goto endLoop
			}
			value = value.Index(idx)
		case reflect.Invalid:
			goto endLoop
		default:
			return nil, eris.Errorf("encountered unexpected value of kind %v in YAML document", value.Kind())
		}
	}

endLoop:
	if value.Kind() == reflect.Invalid || (value.Kind() == reflect.Interface && value.IsNil()) {
		return defaultValue, nil
	}

	switch value := value.Interface().(type) {
	case string:
		return starlark.String(value), nil
	case int:
		return starlark.MakeInt(value), nil
	case bool:
		return starlark.Bool(value), nil
	default:
		return nil, eris.Errorf("can't return value %v", value)
	}
}

func starIsdir(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dirPath string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &dirPath)
	if err != nil {
		return nil, err
	}

	dirPath = normalizePath(getCtx(thread), dirPath)
	info, err := os.Stat(dirPath)
	if err == nil && info.IsDir() {
		return starlark.True, nil
	}
	return starlark.False, nil
}

func starIsfile(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var filePath string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &filePath)
	if err != nil {
		return nil, err
	}

	filePath = normalizePath(getCtx(thread), filePath)
	info, err := os.Stat(filePath)
	if err == nil && !info.IsDir() {
		return starlark.True, nil
	}
	return starlark.False, nil
}

func toolchain(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var command, manager, version string
	var checkCmd, testCmd, lintCmd, fmtCmd string
	var lintFlags, fmtFlags, components, targets *starlark.List

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "command?", &command, "manager?", &manager,
		"version?", &version, "check?", &checkCmd, "test?", &testCmd, "lint?", &lintCmd, "fmt?", &fmtCmd,
		"lint_flags?", &lintFlags, "fmt_flags?", &fmtFlags, "components?", &components, "targets?", &targets)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	if !ctx.initPhase {
		return nil, eris.New("can only be called during the init phase (in the global scope)")
	}
	if ctx.toolchain != nil {
		return nil, eris.New("toolchain was already declared")
	}

	tc := DefaultToolchain()
	if command != "" {
		tc.Command = command
	}
	if manager != "" {
		tc.Manager = manager
	}
	if checkCmd != "" {
		tc.CheckCmd = checkCmd
	}
	if testCmd != "" {
		tc.TestCmd = testCmd
	}
	if lintCmd != "" {
		tc.LintCmd = lintCmd
	}
	if fmtCmd != "" {
		tc.FmtCmd = fmtCmd
	}
	tc.Version = version

	if lintFlags != nil {
		tc.LintFlags, err = starlarkIterable2stringSlice(lintFlags, "lint_flags")
		if err != nil {
			return nil, err
		}
	}
	if fmtFlags != nil {
		tc.FmtFlags, err = starlarkIterable2stringSlice(fmtFlags, "fmt_flags")
		if err != nil {
			return nil, err
		}
	}
	if components != nil {
		tc.Components, err = starlarkIterable2stringSlice(components, "components")
		if err != nil {
			return nil, err
		}
	}
	if targets != nil {
		tc.Targets, err = starlarkIterable2stringSlice(targets, "targets")
		if err != nil {
			return nil, err
		}
	}

	ctx.toolchain = &tc
	return starlark.None, nil
}

func configuration(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var features, extraArgs *starlark.List
	var env *starlark.Dict
	test := true

	cfg := new(Configuration)

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name?", &cfg.Name, "features?", &features,
		"target?", &cfg.Target, "args?", &extraArgs, "env?", &env, "test?", &test)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	if ctx.initPhase {
		return nil, eris.New("can only be called from the configure function")
	}

	cfg.Features, err = starlarkIterable2stringSlice(features, "features")
	if err != nil {
		return nil, err
	}

	cfg.ExtraArgs, err = starlarkIterable2stringSlice(extraArgs, "args")
	if err != nil {
		return nil, err
	}

	cfg.Env = map[string]string{}
	if env != nil {
		for _, rawKey := range env.Keys() {
			key, ok := rawKey.(starlark.String)
			if !ok {
				return nil, eris.Errorf("found key type %s in env map but only strings are supported", rawKey.Type())
			}

			rawValue, _, err := env.Get(rawKey)
			if err != nil {
				return nil, err
			}

			value, ok := rawValue.(starlark.String)
			if !ok {
				return nil, eris.Errorf("found value of type %s for key %s but only strings are supported", rawValue.Type(), key.GoString())
			}

			cfg.Env[key.GoString()] = value.GoString()
		}
	}

	// a cross-compiled test binary can't execute on the host
	cfg.Test = test && cfg.Target == ""

	if cfg.Name == "" {
		cfg.Name = cfg.DeriveName()
	}

	ctx.configs = append(ctx.configs, cfg)
	return cfg, nil
}
