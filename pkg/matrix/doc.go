// Package matrix implements a small check matrix runner based on Starlark for the
// configuration file and mvdan.cc/sh for the shell runtime.
// The goal is to replace the usual "for args in ...; do check; test; lint; done"
// CI shell scripts with something portable that can be tested.
package matrix
