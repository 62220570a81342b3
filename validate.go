package analytics

import (
	"fmt"
	"strings"
)

// reservedNames are rejected as event names and property keys. The match
// is case-insensitive and exact, not substring.
var reservedNames = []string{
	"distinct_id",
	"original_id",
	"time",
	"properties",
	"id",
	"first_id",
	"second_id",
	"users",
	"events",
	"event",
	"user_id",
	"date",
	"datetime",
}

// maxNameLen bounds name length, while the identifier grammar independently
// caps names at 100 bytes; both limits are enforced, so names of 101-255
// bytes always fail the grammar.
const maxNameLen = 255

// checkName validates an event name or a property key: length in [1,255]
// bytes, not a reserved name, and matching the identifier grammar
// [A-Za-z_$][A-Za-z0-9_$]{0,99}.
func checkName(name string) error {
	if len(name) < 1 || len(name) > maxNameLen {
		return fmt.Errorf("%w: invalid name length %d", ErrInvalidParameter, len(name))
	}

	for _, r := range reservedNames {
		if strings.EqualFold(name, r) {
			return fmt.Errorf("%w: name %q is reserved", ErrInvalidParameter, name)
		}
	}

	if !isIdentifier(name) {
		return fmt.Errorf("%w: invalid name %q", ErrInvalidParameter, name)
	}

	return nil
}

// isIdentifier reports whether name matches the identifier grammar. A
// direct character-class scan; no regex engine involved.
func isIdentifier(name string) bool {
	if len(name) > 100 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == '_' || c == '$':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// checkID validates a distinct or origin ID, which only gets the length
// check, not the identifier grammar.
func checkID(id string) error {
	if len(id) < 1 || len(id) > maxNameLen {
		return fmt.Errorf("%w: invalid id length %d", ErrInvalidParameter, len(id))
	}
	return nil
}
