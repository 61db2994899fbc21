package matrix

// installSteps composes the toolchain manager invocations that have to run
// before any check in minimum-supported-version mode: install the pinned
// version, then add the lint components and every target the matrix needs.
func installSteps(file *CheckFile) []*Step {
	tc := file.Toolchain

	steps := []*Step{{
		Kind: StepInstall,
		Argv: []string{tc.Manager, "toolchain", "install", tc.Version, "--profile", "minimal"},
	}}

	for _, component := range tc.Components {
		steps = append(steps, &Step{
			Kind: StepInstall,
			Argv: []string{tc.Manager, "component", "add", component, "--toolchain", tc.Version},
		})
	}

	for _, target := range matrixTargets(file) {
		steps = append(steps, &Step{
			Kind: StepInstall,
			Argv: []string{tc.Manager, "target", "add", target, "--toolchain", tc.Version},
		})
	}

	return steps
}

// matrixTargets collects the targets declared on the toolchain plus every
// target used by a configuration, deduplicated in declaration order.
func matrixTargets(file *CheckFile) []string {
	seen := make(map[string]bool)
	targets := make([]string, 0, len(file.Toolchain.Targets))

	for _, target := range file.Toolchain.Targets {
		if !seen[target] {
			seen[target] = true
			targets = append(targets, target)
		}
	}

	for _, cfg := range file.Configurations {
		if cfg.Target != "" && !seen[cfg.Target] {
			seen[cfg.Target] = true
			targets = append(targets, cfg.Target)
		}
	}

	return targets
}
