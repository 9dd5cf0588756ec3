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

type ReclaimPacketCommand struct {
	PacketID entities.PacketID
	Caller   string
}

type ReclaimPacketResult struct {
	Packet   entities.Packet
	Returned uint64
}

type ReclaimPacketUseCase struct {
	Packets     ports.PacketStore
	Locker      ports.PacketLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Metrics     *application.Metrics
	Logger      *slog.Logger
}

// Execute returns the unclaimed remainder of an expired packet to its creator
// and retires the vault. The packet record stays behind with withdrawn status.
func (u ReclaimPacketUseCase) Execute(ctx context.Context, cmd ReclaimPacketCommand) (ReclaimPacketResult, error) {
	logger := application.ResolveLogger(u.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	if !entities.ValidPrincipal(caller) || cmd.PacketID.IsZero() {
		return ReclaimPacketResult{}, domainerrors.ErrInvalidRequest
	}

	eventID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return ReclaimPacketResult{}, err
	}

	var returned uint64
	var packet entities.Packet
	err = withPacketLock(ctx, u.Locker, cmd.PacketID, func(ctx context.Context) error {
		var mutateErr error
		packet, mutateErr = u.Packets.MutatePacket(ctx, cmd.PacketID, func(ctx context.Context, current entities.Packet, ledger ports.Ledger) (ports.PacketChange, error) {
			now := u.now()
			if err := services.EvaluateReclaim(current, caller, now); err != nil {
				return ports.PacketChange{}, err
			}

			vault := current.Vault()
			balance, exists, err := ledger.Balance(ctx, vault)
			if err != nil {
				return ports.PacketChange{}, err
			}
			returned = current.RemainingAmount()
			if !exists && returned != 0 {
				return ports.PacketChange{}, domainerrors.ErrInvariantViolated
			}
			if exists && balance != returned {
				return ports.PacketChange{}, domainerrors.ErrInvariantViolated
			}

			channel := transfer.For(current.Asset)
			if err := channel.Move(ctx, ledger, transfer.Transfer{
				From:   vault,
				To:     entities.PrincipalAccount(current.Creator, current.Asset),
				Amount: returned,
				Payer:  current.Creator,
			}); err != nil {
				return ports.PacketChange{}, err
			}
			if err := channel.Close(ctx, ledger, vault); err != nil {
				return ports.PacketChange{}, err
			}

			next := current.Clone()
			next.MarkWithdrawn(now)
			if err := next.CheckInvariants(); err != nil {
				return ports.PacketChange{}, err
			}

			envelope, err := newPacketEnvelope(eventID, packetReclaimedEventType, next.ID, now, map[string]any{
				"packet_id":      next.ID.String(),
				"creator":        next.Creator,
				"returned":       returned,
				"claimed_number": next.ClaimedNumber,
				"claimed_amount": next.ClaimedAmount,
			})
			if err != nil {
				return ports.PacketChange{}, err
			}
			return ports.PacketChange{Packet: next, Event: envelope}, nil
		})
		return mutateErr
	})
	if err != nil {
		logger.Warn("reclaim packet rejected",
			"event", "packet_reclaim_rejected",
			"module", application.LogModule,
			"layer", "application",
			"packet_id", cmd.PacketID.String(),
			"caller", caller,
			"error", err.Error(),
		)
		u.Metrics.RecordRejected(ctx, "reclaim", err)
		return ReclaimPacketResult{}, err
	}

	u.Metrics.RecordCommitted(ctx, "reclaim", string(packet.SplitMode), returned)
	logger.Info("packet reclaimed",
		"event", "packet_reclaimed",
		"module", application.LogModule,
		"layer", "application",
		"packet_id", packet.ID.String(),
		"creator", packet.Creator,
		"returned", returned,
	)
	return ReclaimPacketResult{Packet: packet, Returned: returned}, nil
}

func (u ReclaimPacketUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}
