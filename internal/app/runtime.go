package app

import (
	"os"
	"sync"
)

var inTestMode = sync.OnceValue(func() bool {
	return os.Getenv("FONDOLIBRO_TEST_MODE") == "1"
})

// InTestMode reports whether the process should refuse to start servers,
// set by test harnesses to keep accidental `go run` under tests inert.
func InTestMode() bool {
	return inTestMode()
}
