package errors

import "errors"

// Creation errors.
var (
	ErrInvalidTotalNumber  = errors.New("total number must be between 1 and 200")
	ErrInvalidTotalAmount  = errors.New("total amount is invalid")
	ErrInvalidExpiryTime   = errors.New("expiry time is invalid")
	ErrInvalidCreateTime   = errors.New("create time is too far from current time")
	ErrInvalidIssuerKey    = errors.New("issuer key must be a 32 byte ed25519 public key")
	ErrInvalidMetadata     = errors.New("packet name or message is too long")
	ErrInvalidAsset        = errors.New("packet asset is invalid")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPacketExists        = errors.New("packet already exists")
)

// Claim errors.
var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrAlreadyClaimed   = errors.New("packet already claimed by principal")
	ErrFullyClaimed     = errors.New("all packet shares have been claimed")
	ErrClosed           = errors.New("packet is closed")
	ErrExpired          = errors.New("packet has expired")
)

// Reclaim errors.
var (
	ErrUnauthorized     = errors.New("caller is not the packet creator")
	ErrNotExpired       = errors.New("packet has not yet expired")
	ErrAlreadyWithdrawn = errors.New("packet already withdrawn")
)

var (
	ErrPacketNotFound     = errors.New("packet not found")
	ErrInvalidRequest     = errors.New("invalid packet request")
	ErrInvariantViolated  = errors.New("packet invariant violated")
	ErrAccountNotFound    = errors.New("ledger account not found")
	ErrLockNotAcquired    = errors.New("packet lock not acquired")
	ErrRepositoryConflict = errors.New("repository invariant violated")
)
