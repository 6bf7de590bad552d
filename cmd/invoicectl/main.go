// Command invoicectl validates and finalizes invoice drafts from YAML files.
package main

import (
	"errors"
	"fmt"
	"os"
)

// exitCodeBlocked is returned by validate when the draft has errors.
const exitCodeBlocked = 10

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		os.Exit(1)
	}
}
