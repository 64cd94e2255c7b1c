//go:build !js

package main

import (
	"os"

	"opjit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
