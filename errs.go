package analytics

import "errors"

// ErrInvalidParameter reports a bad event name, property key, distinct ID,
// or missing required value. Calls that return it have no side effects and
// send nothing to the Consumer.
var ErrInvalidParameter = errors.New("analytics: invalid parameter")

// I/O failures from a Consumer are returned wrapped with call context; the
// record is dropped, never queued for retry. Allocation failure has no
// recoverable representation in Go: the runtime aborts, preserving the
// fail-fast stance for out-of-memory conditions.
