package main

import (
	"os"

	"github.com/authgate/api/cmd/authctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
