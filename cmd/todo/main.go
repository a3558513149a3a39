package main

import (
	"os"

	"todo/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(cli.Open).Execute(); err != nil {
		os.Exit(1)
	}
}
