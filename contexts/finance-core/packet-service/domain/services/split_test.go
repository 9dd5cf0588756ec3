package services_test

import (
	"math"
	"testing"
	"time"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	"redpacket/contexts/finance-core/packet-service/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitPacket(number int, amount uint64, mode entities.SplitMode) entities.Packet {
	return entities.Packet{
		TotalNumber:    number,
		TotalAmount:    amount,
		SplitMode:      mode,
		Claims:         []entities.ClaimRecord{},
		WithdrawStatus: entities.WithdrawStatusOpen,
	}
}

// drain claims every slot of packet using draws in order and returns the shares.
func drain(t *testing.T, packet entities.Packet, draws []uint64) []uint64 {
	t.Helper()
	shares := make([]uint64, 0, packet.TotalNumber)
	at := time.Unix(1_700_000_000, 0)
	for i := 0; i < packet.TotalNumber; i++ {
		var draw uint64
		if i < len(draws) {
			draw = draws[i]
		}
		share := services.SplitAmount(packet, draw)
		packet.RecordClaim(string(rune('a'+i)), share, at)
		require.NoError(t, packet.CheckInvariants())
		shares = append(shares, share)
	}
	assert.Equal(t, packet.TotalAmount, packet.ClaimedAmount)
	return shares
}

func TestSplitAmountEqualDivisible(t *testing.T) {
	shares := drain(t, splitPacket(3, 300, entities.SplitModeEqual), nil)
	assert.Equal(t, []uint64{100, 100, 100}, shares)
}

func TestSplitAmountEqualFinalClaimAbsorbsRemainder(t *testing.T) {
	shares := drain(t, splitPacket(3, 301, entities.SplitModeEqual), nil)
	assert.Equal(t, []uint64{100, 100, 101}, shares)
}

func TestSplitAmountEqualSmallerThanNumber(t *testing.T) {
	shares := drain(t, splitPacket(4, 3, entities.SplitModeEqual), nil)
	assert.Equal(t, []uint64{0, 0, 0, 3}, shares)
}

func TestSplitAmountRandomStaysWithinWindow(t *testing.T) {
	drawSets := [][]uint64{
		{0, 0},
		{1, 2},
		{math.MaxUint64, math.MaxUint64},
		{12345, 987654321},
		{199, 199},
	}
	for _, draws := range drawSets {
		packet := splitPacket(3, 300, entities.SplitModeRandom)
		at := time.Unix(1_700_000_000, 0)
		var sum uint64
		for i := 0; i < 3; i++ {
			remaining := packet.RemainingAmount()
			slots := uint64(packet.RemainingSlots())
			var draw uint64
			if i < len(draws) {
				draw = draws[i]
			}
			share := services.SplitAmount(packet, draw)
			if slots > 1 {
				assert.GreaterOrEqual(t, share, uint64(1))
				assert.LessOrEqual(t, share, remaining-(slots-1))
			} else {
				assert.Equal(t, remaining, share, "final claim takes the remainder")
			}
			packet.RecordClaim(string(rune('a'+i)), share, at)
			sum += share
		}
		assert.Equal(t, uint64(300), sum)
		require.NoError(t, packet.CheckInvariants())
	}
}

func TestSplitAmountSingleSlotPaysEverything(t *testing.T) {
	for _, mode := range []entities.SplitMode{entities.SplitModeEqual, entities.SplitModeRandom} {
		packet := splitPacket(1, 777, mode)
		assert.False(t, services.NeedsRandomDraw(packet))
		assert.Equal(t, uint64(777), services.SplitAmount(packet, 5))
	}
}

func TestNeedsRandomDraw(t *testing.T) {
	assert.False(t, services.NeedsRandomDraw(splitPacket(3, 300, entities.SplitModeEqual)))
	assert.True(t, services.NeedsRandomDraw(splitPacket(3, 300, entities.SplitModeRandom)))

	lastSlot := splitPacket(2, 300, entities.SplitModeRandom)
	lastSlot.RecordClaim("a", 10, time.Unix(0, 0))
	assert.False(t, services.NeedsRandomDraw(lastSlot))
}

func TestRandomUpperBound(t *testing.T) {
	cases := []struct {
		name      string
		remaining uint64
		slots     uint64
		want      uint64
	}{
		{name: "double the mean", remaining: 300, slots: 3, want: 200},
		{name: "clamped by reserve", remaining: 5, slots: 4, want: 2},
		{name: "one unit per slot", remaining: 3, slots: 3, want: 1},
		{name: "odd remainder rounds down", remaining: 7, slots: 2, want: 6},
		{name: "no overflow at max", remaining: math.MaxUint64, slots: 2, want: math.MaxUint64 - 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, services.RandomUpperBound(tc.remaining, tc.slots))
		})
	}
}
