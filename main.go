package main

import (
	"os"

	"github.com/avanishm/jobdigest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
