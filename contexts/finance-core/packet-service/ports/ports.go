package ports

import (
	"context"
	"time"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	contractsv1 "redpacket/contracts/gen/events/v1"
)

// Ledger exposes the balance primitives of the account substrate. All calls
// made through one Ledger value belong to the same atomic unit.
type Ledger interface {
	Balance(ctx context.Context, account entities.Account) (uint64, bool, error)
	// OpenAccount creates the account if missing; payer records who funds it.
	OpenAccount(ctx context.Context, account entities.Account, payer string) error
	Debit(ctx context.Context, account entities.Account, amount uint64) error
	Credit(ctx context.Context, account entities.Account, amount uint64) error
	// CloseAccount removes an empty account.
	CloseAccount(ctx context.Context, account entities.Account) error
}

// PacketChange is the next version of a packet plus the event describing it.
// The event is appended to the outbox in the same unit as the packet write.
type PacketChange struct {
	Packet entities.Packet
	Event  EventEnvelope
}

type CreateFunc func(ctx context.Context, ledger Ledger) (PacketChange, error)

type MutateFunc func(ctx context.Context, current entities.Packet, ledger Ledger) (PacketChange, error)

// PacketStore is the atomic substrate for packet records and their vaults.
type PacketStore interface {
	// CreatePacket fails with ErrPacketExists when packetID is taken, otherwise
	// runs fn and commits the returned packet, ledger movements and event as one unit.
	CreatePacket(ctx context.Context, packetID entities.PacketID, fn CreateFunc) (entities.Packet, error)
	// MutatePacket locks the packet, hands the locked version to fn and commits
	// the result. Any error from fn discards every change made inside the unit.
	MutatePacket(ctx context.Context, packetID entities.PacketID, fn MutateFunc) (entities.Packet, error)
	GetPacket(ctx context.Context, packetID entities.PacketID) (entities.Packet, error)
	ListPacketsByCreator(ctx context.Context, creator string, limit int, offset int) ([]entities.Packet, error)
}

// SignatureVerifier is the signature verification primitive. It checks the raw
// signature and reports the verified key and message; it knows nothing about packets.
type SignatureVerifier interface {
	Verify(ctx context.Context, proof entities.ClaimProof) (entities.VerifiedSignature, error)
}

// PacketLocker serialises operations on one packet across processes.
type PacketLocker interface {
	WithPacketLock(ctx context.Context, packetID entities.PacketID, fn func(ctx context.Context) error) error
}

// Clock supplies the current time for every expiry comparison.
type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// RandomSeed is the per-claim context a random source may mix into its draw.
type RandomSeed struct {
	PacketID entities.PacketID
	Claimant string
	At       time.Time
}

// RandomSource feeds the random split mode. Implementations are not required
// to be unpredictable; callers choose the source that fits their threat model.
type RandomSource interface {
	Uint64(ctx context.Context, seed RandomSeed) (uint64, error)
}

// AddressDeriver derives packet identities deterministically, so a packet and
// its vault can be located from (creator, create time) without an index.
type AddressDeriver interface {
	DerivePacketID(creator string, createTime time.Time) entities.PacketID
}
