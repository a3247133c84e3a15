package main

import (
	"fmt"
	"os"

	"github.com/websublime/workspace-tools-sub006/cmd/workspace-tools/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
