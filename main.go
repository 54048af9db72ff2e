package main

import (
	"os"

	"github.com/ihatemodels/wprefs/internal/cli"
)

var Version = "dev"

func main() {
	if err := cli.Execute(Version); err != nil {
		os.Exit(1)
	}
}
