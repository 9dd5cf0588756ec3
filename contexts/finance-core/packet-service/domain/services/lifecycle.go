package services

import (
	"time"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
)

// EvaluateClaimEligibility applies the record-level claim preconditions in
// order: open, slots left, claimant not yet paid.
func EvaluateClaimEligibility(packet entities.Packet, claimant string) error {
	if packet.WithdrawStatus != entities.WithdrawStatusOpen {
		return domainerrors.ErrClosed
	}
	if packet.ClaimedNumber >= packet.TotalNumber {
		return domainerrors.ErrFullyClaimed
	}
	if packet.HasClaimed(claimant) {
		return domainerrors.ErrAlreadyClaimed
	}
	return nil
}

// EvaluateClaimWindow rejects claims at or after expiry when closeAtExpiry is set.
func EvaluateClaimWindow(packet entities.Packet, now time.Time, closeAtExpiry bool) error {
	if closeAtExpiry && packet.IsExpired(now) {
		return domainerrors.ErrExpired
	}
	return nil
}

// EvaluateReclaim checks that caller may recover the remainder of packet now.
func EvaluateReclaim(packet entities.Packet, caller string, now time.Time) error {
	if packet.Creator != caller {
		return domainerrors.ErrUnauthorized
	}
	if packet.WithdrawStatus != entities.WithdrawStatusOpen {
		return domainerrors.ErrAlreadyWithdrawn
	}
	if !packet.IsExpired(now) {
		return domainerrors.ErrNotExpired
	}
	return nil
}
