package contract

import "errors"

// Execution errors. All are recoverable; callers decide whether to
// surface them.
var (
	ErrMethodNotFound      = errors.New("method not found")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAuctionEnded        = errors.New("auction ended")
	ErrBidTooLow           = errors.New("bid too low")
	ErrAlreadyEnded        = errors.New("auction already ended")
	ErrInvalidParams       = errors.New("invalid params")
	ErrExecution           = errors.New("execution error")
	ErrUnsupportedKind     = errors.New("contract type not supported")
	ErrNotFound            = errors.New("contract not found")
	ErrDuplicateAddress    = errors.New("contract address already deployed")
)
