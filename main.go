package main

import (
	"os"

	"github.com/zafaraftab1/CareerCopilot-AI/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
