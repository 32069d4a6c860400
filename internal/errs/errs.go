package errs

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrInvalidStatus  = errors.New("invalid ticket status")
)
