package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "redpacket/contexts/finance-core/packet-service/application"
	"redpacket/contexts/finance-core/packet-service/application/transfer"
	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
	"redpacket/contexts/finance-core/packet-service/domain/services"
	"redpacket/contexts/finance-core/packet-service/ports"
)

const (
	packetCreatedEventType   = "packet.created"
	packetClaimedEventType   = "packet.claimed"
	packetReclaimedEventType = "packet.reclaimed"
)

type CreatePacketCommand struct {
	Creator     string
	TotalNumber int
	TotalAmount uint64
	CreateTime  time.Time
	Duration    time.Duration
	SplitMode   entities.SplitMode
	IssuerKey   []byte
	Asset       entities.Asset
	Name        string
	Message     string
}

type CreatePacketUseCase struct {
	Packets     ports.PacketStore
	Deriver     ports.AddressDeriver
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Policy      services.CreatePolicy
	Metrics     *application.Metrics
	Logger      *slog.Logger
}

// Execute validates the draft, then funds the vault and persists the packet
// in a single atomic unit. Balance sufficiency is read inside that unit.
func (u CreatePacketUseCase) Execute(ctx context.Context, cmd CreatePacketCommand) (entities.Packet, error) {
	logger := application.ResolveLogger(u.Logger)
	now := u.now()

	draft := services.PacketDraft{
		Creator:     strings.TrimSpace(cmd.Creator),
		TotalNumber: cmd.TotalNumber,
		TotalAmount: cmd.TotalAmount,
		CreateTime:  cmd.CreateTime.UTC().Truncate(time.Second),
		Duration:    cmd.Duration,
		SplitMode:   cmd.SplitMode,
		IssuerKey:   cmd.IssuerKey,
		Asset:       cmd.Asset,
		Name:        cmd.Name,
		Message:     cmd.Message,
	}
	if err := services.ValidateDraft(draft, u.Policy, now); err != nil {
		logger.Warn("create packet rejected",
			"event", "packet_create_rejected",
			"module", application.LogModule,
			"layer", "application",
			"creator", draft.Creator,
			"error", err.Error(),
		)
		u.Metrics.RecordRejected(ctx, "create", err)
		return entities.Packet{}, err
	}

	packetID := u.Deriver.DerivePacketID(draft.Creator, draft.CreateTime)
	eventID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Packet{}, err
	}

	packet, err := u.Packets.CreatePacket(ctx, packetID, func(ctx context.Context, ledger ports.Ledger) (ports.PacketChange, error) {
		creatorAccount := entities.PrincipalAccount(draft.Creator, draft.Asset)
		balance, exists, err := ledger.Balance(ctx, creatorAccount)
		if err != nil {
			return ports.PacketChange{}, err
		}
		if !exists || balance < draft.TotalAmount {
			return ports.PacketChange{}, domainerrors.ErrInsufficientBalance
		}

		packet := services.NewPacket(packetID, draft)
		if err := transfer.For(packet.Asset).Move(ctx, ledger, transfer.Transfer{
			From:   creatorAccount,
			To:     packet.Vault(),
			Amount: packet.TotalAmount,
			Payer:  packet.Creator,
		}); err != nil {
			return ports.PacketChange{}, err
		}
		if err := packet.CheckInvariants(); err != nil {
			return ports.PacketChange{}, err
		}

		envelope, err := newPacketEnvelope(eventID, packetCreatedEventType, packet.ID, now, map[string]any{
			"packet_id":    packet.ID.String(),
			"creator":      packet.Creator,
			"total_number": packet.TotalNumber,
			"total_amount": packet.TotalAmount,
			"asset_kind":   string(packet.Asset.Kind),
			"asset_id":     packet.Asset.ID,
			"split_mode":   string(packet.SplitMode),
			"expires_at":   packet.Expiry().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return ports.PacketChange{}, err
		}
		return ports.PacketChange{Packet: packet, Event: envelope}, nil
	})
	if err != nil {
		logger.Error("create packet failed",
			"event", "packet_create_failed",
			"module", application.LogModule,
			"layer", "application",
			"packet_id", packetID.String(),
			"creator", draft.Creator,
			"error", err.Error(),
		)
		u.Metrics.RecordRejected(ctx, "create", err)
		return entities.Packet{}, err
	}

	u.Metrics.RecordCommitted(ctx, "create", string(packet.SplitMode), packet.TotalAmount)
	logger.Info("packet created",
		"event", "packet_created",
		"module", application.LogModule,
		"layer", "application",
		"packet_id", packet.ID.String(),
		"creator", packet.Creator,
		"total_number", packet.TotalNumber,
		"total_amount", packet.TotalAmount,
		"split_mode", packet.SplitMode,
		"asset_kind", packet.Asset.Kind,
	)
	return packet, nil
}

func (u CreatePacketUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
