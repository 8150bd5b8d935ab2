package billing

import "errors"

var (
	// ErrInvalidInvoiceData is returned when persisted invoice data violates
	// invariants (negative money, missing customer). It indicates upstream
	// corruption and must never be masked as a normal status.
	ErrInvalidInvoiceData = errors.New("invalid invoice data")
)
