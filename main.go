package main

import (
	"os"

	"github.com/dmar42/nsot/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
