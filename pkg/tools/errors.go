package tools

import "fmt"

// DuplicateToolError is returned when registering a tool under a name that is
// already taken.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool already registered: %s", e.Name)
}

// UnknownToolError is returned when resolving a tool name that is not in the
// registry. The agent loop recovers it as an in-band error string; it is
// never surfaced as a crash.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}
