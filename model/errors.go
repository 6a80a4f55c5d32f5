package model

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication covers both a wrong password and a corrupted
	// ciphertext. Authenticated encryption cannot tell them apart and we
	// don't invent a distinguishing signal.
	ErrAuthentication = errors.New("authentication failed: wrong password or corrupted wallet data")
	// ErrWalletLocked is returned when signing is attempted while the
	// private key is not resident in memory.
	ErrWalletLocked = errors.New("wallet is locked")
	// ErrInvalidAmount rejects a zero-amount transfer at construction.
	ErrInvalidAmount = errors.New("transaction amount must be positive")
	// ErrInvalidAddress rejects a malformed recipient address.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrMessageTooLong rejects a message over MaxMessageLen bytes.
	ErrMessageTooLong = errors.New("transaction message is too long")
	// ErrInvalidSignature rejects a transaction that fails verification.
	ErrInvalidSignature = errors.New("transaction signature is invalid")
	// ErrDuplicateTransaction rejects a transaction already in the pool.
	ErrDuplicateTransaction = errors.New("transaction already exists in pool")
	// ErrInsufficientBalance rejects a transaction whose amount plus fee
	// exceeds the sender's confirmed balance.
	ErrInsufficientBalance = errors.New("insufficient confirmed balance")
	// ErrNoPendingTransactions means there is nothing to mine.
	ErrNoPendingTransactions = errors.New("no pending transactions to mine")
)

// Broken chain invariants, recorded on ChainValidationError.
const (
	InvariantIndex      = "index does not increment by one"
	InvariantPrevHash   = "previous hash does not match predecessor"
	InvariantHash       = "block hash does not match block contents"
	InvariantDifficulty = "block hash does not meet recorded difficulty"
	InvariantTx         = "embedded transaction is invalid"
	InvariantCoinbase   = "coinbase transaction is invalid"
)

// ChainValidationError names the first broken invariant found while
// validating a block or a whole chain, and the index of the block it was
// found at.
type ChainValidationError struct {
	Index     int64
	Invariant string
}

func (e *ChainValidationError) Error() string {
	return fmt.Sprintf("invalid block %d: %s", e.Index, e.Invariant)
}
