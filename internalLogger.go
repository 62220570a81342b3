package analytics

import (
	"log"
	"os"
	"sync/atomic"
)

var internalLogger atomic.Value

func init() {
	internalLogger.Store(log.New(os.Stderr, "[analytics] ", log.LstdFlags))
}

// InternalLogger returns the Logger used to write out internal logs, where
// logs get written when something goes wrong inside the SDK itself.
func InternalLogger() *log.Logger { return internalLogger.Load().(*log.Logger) }

// SetInternalLogger makes l the internal logger used by the SDK.
func SetInternalLogger(l *log.Logger) {
	internalLogger.Store(l)
}
