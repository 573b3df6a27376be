package main

import (
	"os"

	"github.com/leefowlercu/analytics-exporter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
