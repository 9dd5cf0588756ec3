package entities

// ClaimProof is the authorization a claimant presents: an issuer signature over
// the claim message together with the key and message it was produced for.
type ClaimProof struct {
	PublicKey []byte
	Message   []byte
	Signature []byte
}

// VerifiedSignature is what the signature verification primitive reports
// after checking a proof.
type VerifiedSignature struct {
	PublicKey []byte
	Message   []byte
	Valid     bool
}
