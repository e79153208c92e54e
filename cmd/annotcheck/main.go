package main

import (
	"annotcheck/internal/ui/cli"
	"os"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
