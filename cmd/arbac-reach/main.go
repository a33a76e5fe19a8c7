// Command arbac-reach decides ARBAC role reachability from the CLI.
package main

import "github.com/Sentinel-Gate/arbac-reach/cmd/arbac-reach/cmd"

func main() {
	cmd.Execute()
}
