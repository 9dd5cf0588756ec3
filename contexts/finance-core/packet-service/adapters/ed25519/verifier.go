package ed25519adapter

import (
	"context"
	"crypto/ed25519"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
)

// Verifier performs the raw ed25519 check and reports the key and message it
// verified. Malformed proofs are reported as invalid rather than as errors.
type Verifier struct{}

func (Verifier) Verify(_ context.Context, proof entities.ClaimProof) (entities.VerifiedSignature, error) {
	verified := entities.VerifiedSignature{
		PublicKey: append([]byte(nil), proof.PublicKey...),
		Message:   append([]byte(nil), proof.Message...),
	}
	if len(proof.PublicKey) != ed25519.PublicKeySize || len(proof.Signature) != ed25519.SignatureSize {
		return verified, nil
	}
	verified.Valid = ed25519.Verify(ed25519.PublicKey(proof.PublicKey), proof.Message, proof.Signature)
	return verified, nil
}
