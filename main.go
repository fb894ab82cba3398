package main

import (
	"os"

	"github.com/gordyrad/report-relay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
