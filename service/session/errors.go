package session

import "errors"

var (
	// ErrNotConnected means the operation requires a connected session.
	ErrNotConnected = errors.New("wallet session is not connected")

	// ErrNoWalletAvailable means no signer provider was available at
	// connect time.
	ErrNoWalletAvailable = errors.New("no wallet signer available")

	// ErrUserRejected means the signing capability refused the request
	// (connect or sign) on the user's behalf.
	ErrUserRejected = errors.New("request rejected by wallet")

	// ErrOperationInProgress means another exclusive operation (a transfer,
	// or a connect attempt) is already in flight on this session. One
	// transfer at a time prevents duplicate sends.
	ErrOperationInProgress = errors.New("operation already in progress")

	// ErrTransferFailed means the transaction reached the chain and failed
	// during execution.
	ErrTransferFailed = errors.New("transfer failed on chain")

	// ErrTimeout means confirmation tracking gave up before observing a
	// terminal status. The transaction may still land; callers must treat
	// this as "unknown, check later", never as "money not sent".
	ErrTimeout = errors.New("confirmation timed out")
)
