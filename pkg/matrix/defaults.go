package matrix

// defaultCheckFile is used when no checks.star is found. It mirrors the usual
// library crate CI matrix: the default build, the wasm target, the tracing
// feature and the combination of both.
const defaultCheckFile = `
toolchain(
    command = "cargo",
    manager = "rustup",
    version = "1.63.0",
    components = ["clippy"],
)

def configure():
    configuration()
    configuration(target = "wasm32-unknown-unknown")
    configuration(features = ["tracing"])
    configuration(features = ["tracing"], target = "wasm32-unknown-unknown")
`
