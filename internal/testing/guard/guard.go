// Package guard switches the process into test mode when imported, so
// entrypoints under test return before binding ports or dialing Gotenberg.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	Enable()
}

// Enable sets ODYSSEY_TEST_MODE and a placeholder GOTENBERG_URL once.
func Enable() {
	once.Do(func() {
		if os.Getenv("ODYSSEY_TEST_MODE") == "" {
			_ = os.Setenv("ODYSSEY_TEST_MODE", "1")
		}
		if os.Getenv("GOTENBERG_URL") == "" {
			_ = os.Setenv("GOTENBERG_URL", "http://127.0.0.1:0")
		}
	})
}
