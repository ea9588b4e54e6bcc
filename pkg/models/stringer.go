package models

// String methods for custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// FileStatus
func (s FileStatus) String() string { return string(s) }

// ComplexityMethod
func (m ComplexityMethod) String() string { return string(m) }
