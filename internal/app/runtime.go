package app

import (
	"os"
	"strconv"
)

// TestModeEnv makes the binaries exit before dialing Redis, Postgres or
// Gotenberg. The testing package sets it for every test binary.
const TestModeEnv = "OPSBOARD_TEST_MODE"

// InTestMode reports whether startup side effects should be skipped.
func InTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	return err == nil && on
}
