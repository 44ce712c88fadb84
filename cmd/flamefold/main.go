package main

import (
	"os"

	"github.com/flamefold/flamefold/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
