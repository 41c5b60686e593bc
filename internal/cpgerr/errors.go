// Package cpgerr defines the error taxonomy shared by the driver contract
// and the extractor pipeline (spec §7).
package cpgerr

import "fmt"

// SchemaViolation is raised when an edge is attempted between kinds the
// schema forbids, or a required property is missing. Recovered locally by
// the pipeline: the current method's partially written nodes are removed
// (via DeleteMethod) and extraction continues with the next method.
type SchemaViolation struct {
	MethodFullName string
	Signature      string
	File           string
	Detail         string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("schema violation in %s%s (%s): %s", e.MethodFullName, e.Signature, e.File, e.Detail)
}

// CompileError is raised when the source compiler fails. Aborts project()
// before any deletions are committed.
type CompileError struct {
	File   string
	Detail string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error in %s: %s", e.File, e.Detail)
}

func (e *CompileError) Unwrap() error { return e.Err }

// DriverUnavailable is raised when a remote driver disconnects or a
// back-end request otherwise cannot be serviced. Surfaced verbatim;
// retries are the caller's responsibility.
type DriverUnavailable struct {
	Op     string
	Detail string
	Err    error
}

func (e *DriverUnavailable) Error() string {
	return fmt.Sprintf("driver unavailable during %s: %s", e.Op, e.Detail)
}

func (e *DriverUnavailable) Unwrap() error { return e.Err }

// MissingInput is raised when a requested file does not exist. Fails the
// load() that requested it; state unchanged.
type MissingInput struct {
	File string
	Err  error
}

func (e *MissingInput) Error() string {
	return fmt.Sprintf("missing input: %s", e.File)
}

func (e *MissingInput) Unwrap() error { return e.Err }

// PhantomTarget is not an error in the failure sense — it records that a
// call-graph edge referenced a method whose body is unknown. Non-fatal:
// the call-graph builder emits a phantom METHOD head, records the CALL
// edge, and continues. Kept as a typed value so callers that want to
// audit phantom targets can collect them without parsing log lines.
type PhantomTarget struct {
	MethodFullName string
	Signature      string
	CallSiteID     int64
}

func (e *PhantomTarget) Error() string {
	return fmt.Sprintf("phantom target: %s%s referenced from call site %d", e.MethodFullName, e.Signature, e.CallSiteID)
}
