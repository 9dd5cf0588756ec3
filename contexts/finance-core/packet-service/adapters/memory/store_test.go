package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
	"redpacket/contexts/finance-core/packet-service/ports"
)

func testPacket(id entities.PacketID) entities.Packet {
	return entities.Packet{
		ID:             id,
		Creator:        "creator",
		CreateTime:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Duration:       time.Hour,
		TotalNumber:    1,
		TotalAmount:    10,
		Asset:          entities.NativeAsset(0),
		SplitMode:      entities.SplitModeEqual,
		Claims:         []entities.ClaimRecord{},
		WithdrawStatus: entities.WithdrawStatusOpen,
	}
}

func TestCreatePacketDiscardsLedgerOnError(t *testing.T) {
	store := NewStore()
	creator := entities.PrincipalAccount("creator", entities.NativeAsset(0))
	store.SeedBalance(creator, 10)
	id := entities.PacketID{1}
	vault := entities.VaultAccount(id, entities.NativeAsset(0))

	failure := errors.New("late failure")
	_, err := store.CreatePacket(context.Background(), id, func(ctx context.Context, ledger ports.Ledger) (ports.PacketChange, error) {
		if err := ledger.OpenAccount(ctx, vault, "creator"); err != nil {
			return ports.PacketChange{}, err
		}
		if err := ledger.Debit(ctx, creator, 10); err != nil {
			return ports.PacketChange{}, err
		}
		if err := ledger.Credit(ctx, vault, 10); err != nil {
			return ports.PacketChange{}, err
		}
		return ports.PacketChange{}, failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected late failure, got %v", err)
	}
	if balance, _ := store.BalanceOf(creator); balance != 10 {
		t.Fatalf("expected creator balance 10, got %d", balance)
	}
	if _, exists := store.BalanceOf(vault); exists {
		t.Fatal("expected vault to stay unopened")
	}
	if _, err := store.GetPacket(context.Background(), id); !errors.Is(err, domainerrors.ErrPacketNotFound) {
		t.Fatalf("expected packet not found, got %v", err)
	}
}

func TestCommitRequiresUniqueEventID(t *testing.T) {
	store := NewStore()
	create := func(id entities.PacketID, eventID string) error {
		_, err := store.CreatePacket(context.Background(), id, func(context.Context, ports.Ledger) (ports.PacketChange, error) {
			return ports.PacketChange{
				Packet: testPacket(id),
				Event:  ports.EventEnvelope{EventID: eventID},
			}, nil
		})
		return err
	}

	if err := create(entities.PacketID{1}, ""); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for empty event id, got %v", err)
	}
	if err := create(entities.PacketID{1}, "evt-1"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := create(entities.PacketID{1}, "evt-2"); !errors.Is(err, domainerrors.ErrPacketExists) {
		t.Fatalf("expected packet exists, got %v", err)
	}
	if err := create(entities.PacketID{2}, "evt-1"); !errors.Is(err, domainerrors.ErrRepositoryConflict) {
		t.Fatalf("expected repository conflict, got %v", err)
	}
	if _, err := store.GetPacket(context.Background(), entities.PacketID{2}); !errors.Is(err, domainerrors.ErrPacketNotFound) {
		t.Fatalf("expected rejected packet to be absent, got %v", err)
	}
}

func TestMutatePacketRejectsIdentityChange(t *testing.T) {
	store := NewStore()
	id := entities.PacketID{1}
	if _, err := store.CreatePacket(context.Background(), id, func(context.Context, ports.Ledger) (ports.PacketChange, error) {
		return ports.PacketChange{Packet: testPacket(id), Event: ports.EventEnvelope{EventID: "evt-1"}}, nil
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := store.MutatePacket(context.Background(), id, func(_ context.Context, current entities.Packet, _ ports.Ledger) (ports.PacketChange, error) {
		current.ID = entities.PacketID{2}
		return ports.PacketChange{Packet: current, Event: ports.EventEnvelope{EventID: "evt-2"}}, nil
	})
	if !errors.Is(err, domainerrors.ErrInvariantViolated) {
		t.Fatalf("expected invariant violation, got %v", err)
	}

	_, err = store.MutatePacket(context.Background(), entities.PacketID{9}, nil)
	if !errors.Is(err, domainerrors.ErrPacketNotFound) {
		t.Fatalf("expected packet not found, got %v", err)
	}
}

func TestStagedLedgerRules(t *testing.T) {
	a := entities.PrincipalAccount("a", entities.NativeAsset(0))
	b := entities.PrincipalAccount("b", entities.NativeAsset(0))
	base := map[entities.Account]accountRecord{
		a: {Balance: 5, OpenedBy: "a"},
	}
	ledger := newStagedLedger(base)
	ctx := context.Background()

	if err := ledger.Debit(ctx, a, 6); !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := ledger.Credit(ctx, b, 1); !errors.Is(err, domainerrors.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
	if err := ledger.CloseAccount(ctx, a); !errors.Is(err, domainerrors.ErrInvariantViolated) {
		t.Fatalf("expected invariant violation on non-empty close, got %v", err)
	}
	if err := ledger.OpenAccount(ctx, b, "payer"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := ledger.Debit(ctx, a, 5); err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if err := ledger.Credit(ctx, b, 5); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if err := ledger.CloseAccount(ctx, a); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if base[a].Balance != 5 {
		t.Fatalf("expected base untouched before apply, got %d", base[a].Balance)
	}

	ledger.applyTo(base)
	if _, ok := base[a]; ok {
		t.Fatal("expected closed account removed")
	}
	if base[b].Balance != 5 || base[b].OpenedBy != "payer" {
		t.Fatalf("unexpected account b: %+v", base[b])
	}
}

func TestOutboxPendingAndPublished(t *testing.T) {
	store := NewStore()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, eventID := range []string{"evt-b", "evt-a"} {
		id := entities.PacketID{byte(i + 1)}
		occurred := at.Add(time.Duration(i) * time.Minute)
		if _, err := store.CreatePacket(context.Background(), id, func(context.Context, ports.Ledger) (ports.PacketChange, error) {
			return ports.PacketChange{
				Packet: testPacket(id),
				Event:  ports.EventEnvelope{EventID: eventID, EventType: "packet.created", OccurredAt: occurred},
			}, nil
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 2 || pending[0].OutboxID != "evt-b" {
		t.Fatalf("expected creation order, got %+v", pending)
	}
	if err := store.MarkOutboxPublished(context.Background(), "evt-b", at); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	if err := store.MarkOutboxPublished(context.Background(), "missing", at); !errors.Is(err, domainerrors.ErrRepositoryConflict) {
		t.Fatalf("expected conflict for unknown row, got %v", err)
	}
	pending, err = store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].OutboxID != "evt-a" {
		t.Fatalf("expected only evt-a pending, got %+v", pending)
	}
}
