package queries

import (
	"context"
	"log/slog"
	"time"

	application "redpacket/contexts/finance-core/packet-service/application"
	"redpacket/contexts/finance-core/packet-service/domain/entities"
	"redpacket/contexts/finance-core/packet-service/ports"
)

// PacketView is a packet together with its state at the time of the read.
type PacketView struct {
	Packet entities.Packet
	State  entities.State
}

type GetPacketUseCase struct {
	Packets ports.PacketStore
	Clock   ports.Clock
	Logger  *slog.Logger
}

func (uc GetPacketUseCase) Execute(ctx context.Context, packetID entities.PacketID) (PacketView, error) {
	packet, err := uc.Packets.GetPacket(ctx, packetID)
	if err != nil {
		return PacketView{}, err
	}
	return PacketView{Packet: packet, State: packet.State(resolveNow(uc.Clock))}, nil
}

type ListClaimsUseCase struct {
	Packets ports.PacketStore
	Logger  *slog.Logger
}

// Execute returns the claim records of a packet in claim order.
func (uc ListClaimsUseCase) Execute(ctx context.Context, packetID entities.PacketID) ([]entities.ClaimRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	packet, err := uc.Packets.GetPacket(ctx, packetID)
	if err != nil {
		return nil, err
	}
	logger.Debug("packet claims listed",
		"event", "packet_claims_listed",
		"module", application.LogModule,
		"layer", "application",
		"packet_id", packetID.String(),
		"count", len(packet.Claims),
	)
	return append([]entities.ClaimRecord{}, packet.Claims...), nil
}

func resolveNow(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
