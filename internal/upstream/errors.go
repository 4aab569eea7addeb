package upstream

import "fmt"

// UpstreamError is a non-success status from a tile provider. The
// status is surfaced to the client unchanged where meaningful.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
}

// TransportError is a network-level failure reaching the provider:
// timeout, refused connection, DNS failure. Surfaced as 502.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
