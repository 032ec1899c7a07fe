package orchestrator

// The error taxonomy mirrors how failures surface to the user: validation
// failures never start a turn, parse failures tear the session down, and
// transport failures terminate only their own turn so the dataset survives
// for a retry.

// ValidationError reports a rejected user action: missing dataset, empty
// query, oversize upload, or a turn already in flight.
type ValidationError struct {
	Msg string
}

// Error implements the error interface.
func (e *ValidationError) Error() string { return e.Msg }

// ParseError reports a dataset that could not be parsed or bound to a chat
// session. It always coincides with a full session reset.
type ParseError struct {
	Msg string
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string { return e.Msg }

// Unwrap returns the underlying parser or factory failure.
func (e *ParseError) Unwrap() error { return e.Err }

// TransportError reports a failure during a one-shot or streaming query.
// UserMsg carries the classified, user-facing message placed into the
// transcript.
type TransportError struct {
	UserMsg string
	Err     error
}

// Error implements the error interface.
func (e *TransportError) Error() string { return e.UserMsg }

// Unwrap returns the raw backend failure.
func (e *TransportError) Unwrap() error { return e.Err }
