package txstat

import "github.com/pkg/errors"

var (
	// ErrNegativeTotal indicates a charge that would drive a running total below zero.
	ErrNegativeTotal = errors.New("txstat: negative running total")

	// ErrUntracked indicates an operation that needs a record on a transaction without one.
	ErrUntracked = errors.New("txstat: transaction is not tracked")

	// ErrUnknownCategory indicates a category outside the fixed table.
	ErrUnknownCategory = errors.New("txstat: unknown category")

	// ErrInvalidTxn indicates the zero TxnID.
	ErrInvalidTxn = errors.New("txstat: invalid transaction id")

	// ErrBadAlloc indicates a region request with a negative size or an
	// alignment that is not a positive power of two.
	ErrBadAlloc = errors.New("txstat: invalid region allocation")

	// ErrClosed indicates use of a manager after Close.
	ErrClosed = errors.New("txstat: manager is closed")
)
