package services

import (
	"bytes"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
)

// ClaimMessage is the exact byte string an issuer signs to authorize claimant
// on packetID: the 32 id bytes followed by the claimant identity bytes.
func ClaimMessage(packetID entities.PacketID, claimant string) []byte {
	message := make([]byte, 0, len(packetID)+len(claimant))
	message = append(message, packetID[:]...)
	return append(message, claimant...)
}

// AuthorizeClaim cross-checks a verified signature against the packet issuer
// and the claim message. The signature is scoped to one (packet, claimant)
// pair and cannot be replayed for another packet or another claimant.
func AuthorizeClaim(packet entities.Packet, claimant string, verified entities.VerifiedSignature) error {
	if !verified.Valid {
		return domainerrors.ErrInvalidSignature
	}
	if len(packet.IssuerKey) != entities.IssuerKeySize || !bytes.Equal(verified.PublicKey, packet.IssuerKey) {
		return domainerrors.ErrInvalidSignature
	}
	if !bytes.Equal(verified.Message, ClaimMessage(packet.ID, claimant)) {
		return domainerrors.ErrInvalidSignature
	}
	return nil
}
