// Command bitgen generates Go accessors for bit-packed records described in
// a TOML, YAML or JSON schema, and inspects their layouts.
package main

import (
	"os"
)

func main() {
	rc := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := rc.Execute(); err != nil {
		os.Exit(1)
	}
}
