package random

import (
	"context"
	"testing"
	"time"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	"redpacket/contexts/finance-core/packet-service/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSourceIsRepeatable(t *testing.T) {
	seed := ports.RandomSeed{
		PacketID: entities.PacketID{1},
		Claimant: "alice",
		At:       time.Unix(1_700_000_000, 0),
	}
	first, err := HashSource{}.Uint64(context.Background(), seed)
	require.NoError(t, err)
	second, err := HashSource{}.Uint64(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	seed.Claimant = "bob"
	other, err := HashSource{}.Uint64(context.Background(), seed)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestNewResolvesSource(t *testing.T) {
	assert.IsType(t, HashSource{}, New(SourceHash))
	assert.IsType(t, CryptoSource{}, New(SourceCrypto))
	assert.IsType(t, CryptoSource{}, New("unknown"))

	_, err := CryptoSource{}.Uint64(context.Background(), ports.RandomSeed{})
	assert.NoError(t, err)
}
