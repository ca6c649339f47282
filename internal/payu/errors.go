package payu

import "fmt"

// ValidationError reports a required field that is missing or malformed. It
// is detected before anything is sent and surfaces as a failed Result.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("property: %s, message: %s", e.Field, e.Reason)
}

// TransportError wraps a network failure talking to the processor. The
// request may or may not have reached the processor.
type TransportError struct {
	Op  Operation
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("payu %s: post %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a processor reply that could not be read at all.
type ProtocolError struct {
	Op     Operation
	Status int
	Body   string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payu %s: unreadable response (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("payu %s: unreadable response (status %d)", e.Op, e.Status)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
