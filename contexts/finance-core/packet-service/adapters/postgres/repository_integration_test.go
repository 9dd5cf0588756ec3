//go:build integration

package postgresadapter

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	blake2badapter "redpacket/contexts/finance-core/packet-service/adapters/blake2b"
	ed25519adapter "redpacket/contexts/finance-core/packet-service/adapters/ed25519"
	"redpacket/contexts/finance-core/packet-service/adapters/random"
	"redpacket/contexts/finance-core/packet-service/application/commands"
	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
	"redpacket/contexts/finance-core/packet-service/domain/services"
	"redpacket/contexts/finance-core/packet-service/ports"
	"redpacket/internal/platform/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type repoFixture struct {
	repo    *Repository
	clock   *fixedClock
	issuer  ed25519.PrivateKey
	create  commands.CreatePacketUseCase
	claim   commands.ClaimPacketUseCase
	reclaim commands.ReclaimPacketUseCase
}

func setupRepository(t *testing.T) *repoFixture {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("redpacket"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pg, err := db.Connect(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Close() })
	require.NoError(t, pg.Migrate(nil))

	_, issuer, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	f := &repoFixture{
		repo:   NewRepository(pg.DB, nil),
		clock:  &fixedClock{now: time.Now().UTC().Truncate(time.Second)},
		issuer: issuer,
	}
	f.create = commands.CreatePacketUseCase{
		Packets:     f.repo,
		Deriver:     blake2badapter.Deriver{},
		Clock:       f.clock,
		IDGenerator: UUIDGenerator{},
	}
	f.claim = commands.ClaimPacketUseCase{
		Packets:       f.repo,
		Verifier:      ed25519adapter.Verifier{},
		Random:        random.HashSource{},
		Clock:         f.clock,
		IDGenerator:   UUIDGenerator{},
		CloseAtExpiry: true,
	}
	f.reclaim = commands.ReclaimPacketUseCase{
		Packets:     f.repo,
		Clock:       f.clock,
		IDGenerator: UUIDGenerator{},
	}
	return f
}

func (f *repoFixture) fund(t *testing.T, owner string, asset entities.Asset, amount uint64) {
	t.Helper()
	err := f.repo.db.Transaction(func(tx *gorm.DB) error {
		l := ledger{tx: tx}
		account := entities.PrincipalAccount(owner, asset)
		if err := l.OpenAccount(context.Background(), account, owner); err != nil {
			return err
		}
		return l.Credit(context.Background(), account, amount)
	})
	require.NoError(t, err)
}

func (f *repoFixture) balance(t *testing.T, account entities.Account) (uint64, bool) {
	t.Helper()
	var amount uint64
	var exists bool
	err := f.repo.db.Transaction(func(tx *gorm.DB) error {
		var err error
		amount, exists, err = ledger{tx: tx}.Balance(context.Background(), account)
		return err
	})
	require.NoError(t, err)
	return amount, exists
}

func (f *repoFixture) newPacket(t *testing.T, creator string, number int, amount uint64) entities.Packet {
	t.Helper()
	asset := entities.NativeAsset(0)
	f.fund(t, creator, asset, amount)
	packet, err := f.create.Execute(context.Background(), commands.CreatePacketCommand{
		Creator:     creator,
		TotalNumber: number,
		TotalAmount: amount,
		CreateTime:  f.clock.Now(),
		Duration:    time.Hour,
		SplitMode:   entities.SplitModeEqual,
		IssuerKey:   f.issuer.Public().(ed25519.PublicKey),
		Asset:       asset,
	})
	require.NoError(t, err)
	return packet
}

func (f *repoFixture) claimAs(packetID entities.PacketID, claimant string) (commands.ClaimPacketResult, error) {
	message := services.ClaimMessage(packetID, claimant)
	return f.claim.Execute(context.Background(), commands.ClaimPacketCommand{
		PacketID: packetID,
		Claimant: claimant,
		Proof: entities.ClaimProof{
			PublicKey: f.issuer.Public().(ed25519.PublicKey),
			Message:   message,
			Signature: ed25519.Sign(f.issuer, message),
		},
	})
}

func TestIntegration_Repository_PacketLifecycle(t *testing.T) {
	f := setupRepository(t)
	ctx := context.Background()
	packet := f.newPacket(t, "creator", 3, 301)

	_, err := f.create.Execute(ctx, commands.CreatePacketCommand{
		Creator:     "creator",
		TotalNumber: 1,
		TotalAmount: 1,
		CreateTime:  packet.CreateTime,
		Duration:    time.Hour,
		SplitMode:   entities.SplitModeEqual,
		IssuerKey:   packet.IssuerKey,
		Asset:       packet.Asset,
	})
	assert.ErrorIs(t, err, domainerrors.ErrPacketExists)

	first, err := f.claimAs(packet.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), first.Amount)
	_, err = f.claimAs(packet.ID, "alice")
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyClaimed)

	stored, err := f.repo.GetPacket(ctx, packet.ID)
	require.NoError(t, err)
	require.Len(t, stored.Claims, 1)
	assert.Equal(t, "alice", stored.Claims[0].Claimant)
	vault, ok := f.balance(t, packet.Vault())
	require.True(t, ok)
	assert.Equal(t, uint64(201), vault)

	f.clock.Set(packet.Expiry())
	result, err := f.reclaim.Execute(ctx, commands.ReclaimPacketCommand{PacketID: packet.ID, Caller: "creator"})
	require.NoError(t, err)
	assert.Equal(t, uint64(201), result.Returned)
	_, ok = f.balance(t, packet.Vault())
	assert.False(t, ok)
	creatorBalance, _ := f.balance(t, entities.PrincipalAccount("creator", packet.Asset))
	assert.Equal(t, uint64(201), creatorBalance)

	pending, err := f.repo.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for _, row := range pending {
		require.NoError(t, f.repo.MarkOutboxPublished(ctx, row.OutboxID, f.clock.Now()))
	}
	pending, err = f.repo.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.ErrorIs(t, f.repo.MarkOutboxPublished(ctx, "missing", f.clock.Now()), domainerrors.ErrRepositoryConflict)
}

func TestIntegration_Repository_DuplicateClaimRowRollsBack(t *testing.T) {
	f := setupRepository(t)
	ctx := context.Background()
	packet := f.newPacket(t, "creator", 3, 300)
	_, err := f.claimAs(packet.ID, "alice")
	require.NoError(t, err)

	_, err = f.repo.MutatePacket(ctx, packet.ID, func(_ context.Context, current entities.Packet, _ ports.Ledger) (ports.PacketChange, error) {
		next := current.Clone()
		next.RecordClaim("alice", 0, f.clock.Now())
		return ports.PacketChange{Packet: next, Event: ports.EventEnvelope{EventID: "dup-claim", EventType: "packet.claimed"}}, nil
	})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyClaimed)

	stored, err := f.repo.GetPacket(ctx, packet.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ClaimedNumber)
	assert.Equal(t, uint64(100), stored.ClaimedAmount)
}

func TestIntegration_Repository_ConcurrentClaimsSerialize(t *testing.T) {
	f := setupRepository(t)
	packet := f.newPacket(t, "creator", 5, 1000)

	var wg sync.WaitGroup
	errs := make([]error, 12)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.claimAs(packet.ID, fmt.Sprintf("claimant-%02d", i))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainerrors.ErrFullyClaimed):
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	assert.Equal(t, 5, succeeded)

	stored, err := f.repo.GetPacket(context.Background(), packet.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), stored.ClaimedAmount)
	require.NoError(t, stored.CheckInvariants())
	vault, _ := f.balance(t, packet.Vault())
	assert.Zero(t, vault)
}

func TestIntegration_Repository_VaultAndPrincipalDoNotShareRows(t *testing.T) {
	f := setupRepository(t)
	packet := f.newPacket(t, "creator", 1, 50)

	aliased := entities.PrincipalAccount(entities.VaultOwner(packet.ID), packet.Asset)
	_, exists := f.balance(t, aliased)
	assert.False(t, exists)
	vault, exists := f.balance(t, packet.Vault())
	require.True(t, exists)
	assert.Equal(t, uint64(50), vault)
}
