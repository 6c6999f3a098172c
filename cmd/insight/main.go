// Package main provides the entry point for the insight directory
// inventory CLI.
package main

import (
	"os"

	"github.com/jamesainslie/insight/pkg/insight/logging"
)

func main() {
	err := Execute()
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}
