package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceBusy       = errors.New("device is busy with another sync")
	ErrUnknownStrategy  = errors.New("unknown classification strategy")
	ErrMalformedPunch   = errors.New("malformed punch")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNoData           = errors.New("no synced data found")
	ErrNoRuns           = errors.New("no sync runs recorded")
)

// ConnectionError is returned when the device cannot be reached or the
// connect handshake times out. Nothing has been fetched or exported.
type ConnectionError struct {
	Device string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to device %s: %v", e.Device, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DataRetrievalError covers failed or malformed directory and punch reads
// after a successful connect.
type DataRetrievalError struct {
	Op  string
	Err error
}

func (e *DataRetrievalError) Error() string {
	return fmt.Sprintf("retrieve %s: %v", e.Op, e.Err)
}

func (e *DataRetrievalError) Unwrap() error { return e.Err }

// ExportError reports a single sink failure. Other sinks are unaffected.
type ExportError struct {
	Sink string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s: %v", e.Sink, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// IsConnection reports whether err is, or wraps, a ConnectionError.
func IsConnection(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsDataRetrieval reports whether err is, or wraps, a DataRetrievalError.
func IsDataRetrieval(err error) bool {
	var de *DataRetrievalError
	return errors.As(err, &de)
}

// ExportFailures returns every ExportError contained in err, which may be a
// joined error.
func ExportFailures(err error) []*ExportError {
	if err == nil {
		return nil
	}
	var out []*ExportError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, ExportFailures(e)...)
		}
		return out
	}
	var ee *ExportError
	if errors.As(err, &ee) {
		out = append(out, ee)
	}
	return out
}
