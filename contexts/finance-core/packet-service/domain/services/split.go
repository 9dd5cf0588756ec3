package services

import "redpacket/contexts/finance-core/packet-service/domain/entities"

// NeedsRandomDraw reports whether the next share of packet depends on a random draw.
func NeedsRandomDraw(packet entities.Packet) bool {
	return packet.SplitMode == entities.SplitModeRandom && packet.RemainingSlots() > 1
}

// SplitAmount computes the share owed to the next claimant of packet.
// draw is only consulted when NeedsRandomDraw is true.
//
// The final share is always the whole remainder, so the sum of all shares equals
// TotalAmount regardless of divisibility or of the random source quality.
func SplitAmount(packet entities.Packet, draw uint64) uint64 {
	remainingAmount := packet.RemainingAmount()
	remainingSlots := uint64(packet.RemainingSlots())
	if remainingSlots <= 1 {
		return remainingAmount
	}

	if packet.SplitMode != entities.SplitModeRandom {
		return packet.TotalAmount / uint64(packet.TotalNumber)
	}

	upper := RandomUpperBound(remainingAmount, remainingSlots)
	return 1 + draw%upper
}

// RandomUpperBound is floor(2*remaining/slots), clamped so every later slot
// can still receive one unit, and never below one.
func RandomUpperBound(remainingAmount uint64, remainingSlots uint64) uint64 {
	// remaining%slots*2 < 2*slots, so this form cannot overflow.
	upper := remainingAmount/remainingSlots*2 + (remainingAmount%remainingSlots*2)/remainingSlots
	if reserve := remainingSlots - 1; remainingAmount > reserve {
		if limit := remainingAmount - reserve; upper > limit {
			upper = limit
		}
	} else {
		upper = 1
	}
	if upper < 1 {
		upper = 1
	}
	return upper
}
