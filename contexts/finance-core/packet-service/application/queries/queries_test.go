package queries_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"redpacket/contexts/finance-core/packet-service/adapters/memory"
	"redpacket/contexts/finance-core/packet-service/application/queries"
	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
	"redpacket/contexts/finance-core/packet-service/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func seedPacket(t *testing.T, store *memory.Store, id byte, creator string, createdAt time.Time, claims ...string) {
	t.Helper()
	packetID := entities.PacketID{id}
	_, err := store.CreatePacket(context.Background(), packetID, func(context.Context, ports.Ledger) (ports.PacketChange, error) {
		packet := entities.Packet{
			ID:             packetID,
			Creator:        creator,
			CreateTime:     createdAt,
			Duration:       time.Hour,
			TotalNumber:    3,
			TotalAmount:    30,
			Asset:          entities.NativeAsset(0),
			SplitMode:      entities.SplitModeEqual,
			Claims:         []entities.ClaimRecord{},
			WithdrawStatus: entities.WithdrawStatusOpen,
		}
		for _, claimant := range claims {
			packet.RecordClaim(claimant, 10, createdAt)
		}
		return ports.PacketChange{
			Packet: packet,
			Event:  ports.EventEnvelope{EventID: fmt.Sprintf("evt-%d", id), OccurredAt: createdAt},
		}, nil
	})
	require.NoError(t, err)
}

func TestGetPacketReportsStateAtClock(t *testing.T) {
	store := memory.NewStore()
	seedPacket(t, store, 1, "creator", base, "alice")

	now := base.Add(10 * time.Minute)
	store.SetClock(func() time.Time { return now })
	uc := queries.GetPacketUseCase{Packets: store, Clock: store}

	view, err := uc.Execute(context.Background(), entities.PacketID{1})
	require.NoError(t, err)
	assert.Equal(t, entities.StateActive, view.State)
	assert.Equal(t, 1, view.Packet.ClaimedNumber)

	now = base.Add(time.Hour)
	view, err = uc.Execute(context.Background(), entities.PacketID{1})
	require.NoError(t, err)
	assert.Equal(t, entities.StateExpired, view.State)

	_, err = uc.Execute(context.Background(), entities.PacketID{2})
	assert.ErrorIs(t, err, domainerrors.ErrPacketNotFound)
}

func TestListClaimsReturnsCopy(t *testing.T) {
	store := memory.NewStore()
	seedPacket(t, store, 1, "creator", base, "alice", "bob")
	uc := queries.ListClaimsUseCase{Packets: store}

	claims, err := uc.Execute(context.Background(), entities.PacketID{1})
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, "alice", claims[0].Claimant)
	assert.Equal(t, "bob", claims[1].Claimant)

	claims[0].Claimant = "mallory"
	again, err := uc.Execute(context.Background(), entities.PacketID{1})
	require.NoError(t, err)
	assert.Equal(t, "alice", again[0].Claimant)
}

func TestListPacketsNewestFirstWithPaging(t *testing.T) {
	store := memory.NewStore()
	seedPacket(t, store, 1, "creator", base)
	seedPacket(t, store, 2, "creator", base.Add(time.Minute))
	seedPacket(t, store, 3, "creator", base.Add(2*time.Minute))
	seedPacket(t, store, 4, "someone-else", base.Add(3*time.Minute))
	uc := queries.ListPacketsUseCase{Packets: store, Clock: store}

	items, err := uc.Execute(context.Background(), queries.ListPacketsQuery{Creator: " creator "})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, entities.PacketID{3}, items[0].Packet.ID)
	assert.Equal(t, entities.PacketID{1}, items[2].Packet.ID)

	page, err := uc.Execute(context.Background(), queries.ListPacketsQuery{Creator: "creator", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, entities.PacketID{2}, page[0].Packet.ID)

	_, err = uc.Execute(context.Background(), queries.ListPacketsQuery{Creator: ""})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
	_, err = uc.Execute(context.Background(), queries.ListPacketsQuery{Creator: "creator", Offset: -1})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
}
