package main

import (
	"os"

	"launcherd/internal/cli"
)

func main() { os.Exit(cli.Main()) }
