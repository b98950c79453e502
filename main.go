package main

import (
	"fmt"
	"os"

	"github.com/workflowpro/qaharness/cmd/root"
)

func main() {
	if err := root.RootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
