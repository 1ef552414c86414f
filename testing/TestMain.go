// Package testing puts any test binary that imports it into test mode, so
// package tests never start servers, workers or PDF conversions.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

// Environment applied before the importing package's tests run. Values the
// caller already set win.
var defaults = map[string]string{
	"OPSBOARD_TEST_MODE": "1",
	"GOTENBERG_URL":      "http://127.0.0.1:0",
	"LOG_LEVEL":          "error",
}

var once sync.Once

func apply() {
	once.Do(func() {
		for key, value := range defaults {
			if _, ok := os.LookupEnv(key); key != "OPSBOARD_TEST_MODE" && ok {
				continue
			}
			_ = os.Setenv(key, value)
		}
	})
}

func init() {
	apply()
}

// TestMain is used by packages that want the environment applied explicitly.
func TestMain(m *stdtesting.M) {
	apply()
	os.Exit(m.Run())
}
