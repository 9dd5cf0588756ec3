package random

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"redpacket/contexts/finance-core/packet-service/ports"

	"golang.org/x/crypto/blake2b"
)

const (
	SourceHash   = "hash"
	SourceCrypto = "crypto"
)

// HashSource hashes the packet id, the claimant and the claim timestamp.
// Anyone who knows those inputs can predict the draw; it exists for
// reproducible payouts, not for fairness against adversarial claimants.
type HashSource struct{}

func (HashSource) Uint64(_ context.Context, seed ports.RandomSeed) (uint64, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return 0, err
	}
	_, _ = h.Write(seed.PacketID[:])
	_, _ = h.Write([]byte(seed.Claimant))
	_, _ = h.Write(binary.LittleEndian.AppendUint64(nil, uint64(seed.At.Unix())))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8]), nil
}

// CryptoSource draws from the operating system CSPRNG and ignores the seed.
type CryptoSource struct{}

func (CryptoSource) Uint64(_ context.Context, _ ports.RandomSeed) (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read crypto random: %w", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// New resolves a configured source name; unknown names fall back to CryptoSource.
func New(name string) ports.RandomSource {
	if name == SourceHash {
		return HashSource{}
	}
	return CryptoSource{}
}
