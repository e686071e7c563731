package main

import (
	"os"

	"github.com/mpavel/diffscope/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
