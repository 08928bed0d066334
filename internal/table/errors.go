package table

import "errors"

var (
	// ErrOperationFailed wraps every failed network operation. Callers get no
	// finer classification than this.
	ErrOperationFailed = errors.New("operation failed")

	ErrClosed         = errors.New("table closed")
	ErrUnknownField   = errors.New("unknown field")
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidRecord  = errors.New("invalid record")
)
