package main

import (
	"os"

	"gitaid/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
