package packetservice

import (
	"log/slog"

	blake2badapter "redpacket/contexts/finance-core/packet-service/adapters/blake2b"
	ed25519adapter "redpacket/contexts/finance-core/packet-service/adapters/ed25519"
	httpadapter "redpacket/contexts/finance-core/packet-service/adapters/http"
	"redpacket/contexts/finance-core/packet-service/adapters/memory"
	"redpacket/contexts/finance-core/packet-service/adapters/random"
	application "redpacket/contexts/finance-core/packet-service/application"
	"redpacket/contexts/finance-core/packet-service/application/commands"
	"redpacket/contexts/finance-core/packet-service/application/queries"
	"redpacket/contexts/finance-core/packet-service/application/workers"
	"redpacket/contexts/finance-core/packet-service/domain/services"
	"redpacket/contexts/finance-core/packet-service/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	OutboxRelay workers.OutboxRelay
	Store       *memory.Store
}

type Dependencies struct {
	Packets     ports.PacketStore
	Outbox      ports.OutboxRepository
	Publisher   ports.EventPublisher
	Verifier    ports.SignatureVerifier
	Random      ports.RandomSource
	Deriver     ports.AddressDeriver
	Locker      ports.PacketLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Metrics     *application.Metrics

	CreatePolicy        services.CreatePolicy
	CloseClaimsAtExpiry bool
	OutboxBatchSize     int
	Logger              *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.Verifier == nil {
		deps.Verifier = ed25519adapter.Verifier{}
	}
	if deps.Random == nil {
		deps.Random = random.CryptoSource{}
	}
	if deps.Deriver == nil {
		deps.Deriver = blake2badapter.Deriver{}
	}

	createPacket := commands.CreatePacketUseCase{
		Packets:     deps.Packets,
		Deriver:     deps.Deriver,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Policy:      deps.CreatePolicy,
		Metrics:     deps.Metrics,
		Logger:      deps.Logger,
	}
	claimPacket := commands.ClaimPacketUseCase{
		Packets:       deps.Packets,
		Verifier:      deps.Verifier,
		Random:        deps.Random,
		Locker:        deps.Locker,
		Clock:         deps.Clock,
		IDGenerator:   deps.IDGenerator,
		CloseAtExpiry: deps.CloseClaimsAtExpiry,
		Metrics:       deps.Metrics,
		Logger:        deps.Logger,
	}
	reclaimPacket := commands.ReclaimPacketUseCase{
		Packets:     deps.Packets,
		Locker:      deps.Locker,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Metrics:     deps.Metrics,
		Logger:      deps.Logger,
	}

	getPacket := queries.GetPacketUseCase{
		Packets: deps.Packets,
		Clock:   deps.Clock,
		Logger:  deps.Logger,
	}
	listPackets := queries.ListPacketsUseCase{
		Packets: deps.Packets,
		Clock:   deps.Clock,
		Logger:  deps.Logger,
	}
	listClaims := queries.ListClaimsUseCase{
		Packets: deps.Packets,
		Logger:  deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CreatePacket:  createPacket,
			ClaimPacket:   claimPacket,
			ReclaimPacket: reclaimPacket,
			GetPacket:     getPacket,
			ListPackets:   listPackets,
			ListClaims:    listClaims,
			Clock:         deps.Clock,
			Logger:        deps.Logger,
		},
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.OutboxBatchSize,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module over a single in-process store. Claims
// close at expiry and draws come from the hash source so runs are repeatable.
func NewInMemoryModule(publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Packets:     store,
		Outbox:      store,
		Publisher:   publisher,
		Random:      random.HashSource{},
		Clock:       store,
		IDGenerator: store,
		CreatePolicy: services.CreatePolicy{
			MaxCreateSkew: services.DefaultMaxCreateSkew,
		},
		CloseClaimsAtExpiry: true,
		Logger:              logger,
	})
	module.Store = store
	return module
}
