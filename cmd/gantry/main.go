// Package main is the single-binary entrypoint for gantry.
// gantry fabricates Gantt chart task data for UI prototyping.
package main

import "github.com/gantry-dev/gantry/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
