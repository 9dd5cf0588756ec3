package httpadapter

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"redpacket/contexts/finance-core/packet-service/adapters/memory"
	"redpacket/contexts/finance-core/packet-service/application/commands"
	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
	httptransport "redpacket/contexts/finance-core/packet-service/transport/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayAmount(t *testing.T) {
	cases := []struct {
		units    uint64
		decimals int32
		want     string
	}{
		{units: 1500, decimals: 3, want: "1.500"},
		{units: 1, decimals: 9, want: "0.000000001"},
		{units: 42, decimals: 0, want: "42"},
		{units: math.MaxUint64, decimals: 18, want: "18.446744073709551615"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DisplayAmount(tc.units, tc.decimals))
	}
}

func TestAssetFromDTO(t *testing.T) {
	native, err := assetFromDTO(httptransport.AssetDTO{Decimals: 9})
	require.NoError(t, err)
	assert.Equal(t, entities.NativeAsset(9), native)

	token, err := assetFromDTO(httptransport.AssetDTO{Kind: "Fungible_Token", ID: "usdc", Decimals: 6})
	require.NoError(t, err)
	assert.Equal(t, entities.TokenAsset("usdc", 6), token)

	_, err = assetFromDTO(httptransport.AssetDTO{Kind: "nft"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAsset)
}

func TestDecodeHexAcceptsPrefix(t *testing.T) {
	raw, err := decodeHex(" 0xdead ")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, raw)
}

func TestDurationFromSeconds(t *testing.T) {
	d, err := durationFromSeconds(3600)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	for _, seconds := range []int64{0, -1, math.MaxInt64/int64(time.Second) + 1, 1<<55 + 3600} {
		_, err := durationFromSeconds(seconds)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidExpiryTime, seconds)
	}
}

func TestCreatePacketHandlerRejectsOverflowingDuration(t *testing.T) {
	store := memory.NewStore()
	handler := Handler{
		CreatePacket: commands.CreatePacketUseCase{Packets: store, Clock: store, IDGenerator: store},
		Clock:        store,
	}

	_, err := handler.CreatePacketHandler(context.Background(), "creator", httptransport.CreatePacketRequest{
		TotalNumber:     1,
		TotalAmount:     10,
		DurationSeconds: 1<<55 + 3600,
		SplitMode:       "equal",
		IssuerKey:       strings.Repeat("ab", entities.IssuerKeySize),
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidExpiryTime)
}
