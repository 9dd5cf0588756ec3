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

type ClaimPacketCommand struct {
	PacketID entities.PacketID
	Claimant string
	Proof    entities.ClaimProof
}

type ClaimPacketResult struct {
	Packet entities.Packet
	Amount uint64
}

type ClaimPacketUseCase struct {
	Packets     ports.PacketStore
	Verifier    ports.SignatureVerifier
	Random      ports.RandomSource
	Locker      ports.PacketLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	// CloseAtExpiry rejects claims once the packet expiry has passed.
	CloseAtExpiry bool
	Metrics       *application.Metrics
	Logger        *slog.Logger
}

// Execute runs the claim workflow in this order:
// 1) raw signature verification (stateless, outside the atomic unit)
// 2) eligibility, authorization and window checks against the locked packet
// 3) share computation, vault payout and record update in the same unit.
func (u ClaimPacketUseCase) Execute(ctx context.Context, cmd ClaimPacketCommand) (ClaimPacketResult, error) {
	logger := application.ResolveLogger(u.Logger)
	claimant := strings.TrimSpace(cmd.Claimant)
	if !entities.ValidPrincipal(claimant) || cmd.PacketID.IsZero() {
		return ClaimPacketResult{}, domainerrors.ErrInvalidRequest
	}

	verified, err := u.Verifier.Verify(ctx, cmd.Proof)
	if err != nil {
		logger.Error("claim signature verification failed",
			"event", "packet_claim_verify_failed",
			"module", application.LogModule,
			"layer", "application",
			"packet_id", cmd.PacketID.String(),
			"claimant", claimant,
			"error", err.Error(),
		)
		return ClaimPacketResult{}, err
	}

	eventID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return ClaimPacketResult{}, err
	}

	var amount uint64
	var packet entities.Packet
	err = withPacketLock(ctx, u.Locker, cmd.PacketID, func(ctx context.Context) error {
		var mutateErr error
		packet, mutateErr = u.Packets.MutatePacket(ctx, cmd.PacketID, func(ctx context.Context, current entities.Packet, ledger ports.Ledger) (ports.PacketChange, error) {
			now := u.now()
			if err := services.EvaluateClaimEligibility(current, claimant); err != nil {
				return ports.PacketChange{}, err
			}
			if err := services.AuthorizeClaim(current, claimant, verified); err != nil {
				return ports.PacketChange{}, err
			}
			if err := services.EvaluateClaimWindow(current, now, u.CloseAtExpiry); err != nil {
				return ports.PacketChange{}, err
			}

			var draw uint64
			if services.NeedsRandomDraw(current) {
				value, err := u.Random.Uint64(ctx, ports.RandomSeed{
					PacketID: current.ID,
					Claimant: claimant,
					At:       now,
				})
				if err != nil {
					return ports.PacketChange{}, err
				}
				draw = value
			}
			amount = services.SplitAmount(current, draw)

			next := current.Clone()
			if err := transfer.For(next.Asset).Move(ctx, ledger, transfer.Transfer{
				From:   next.Vault(),
				To:     entities.PrincipalAccount(claimant, next.Asset),
				Amount: amount,
				Payer:  claimant,
			}); err != nil {
				return ports.PacketChange{}, err
			}
			next.RecordClaim(claimant, amount, now)
			if err := next.CheckInvariants(); err != nil {
				return ports.PacketChange{}, err
			}

			envelope, err := newPacketEnvelope(eventID, packetClaimedEventType, next.ID, now, map[string]any{
				"packet_id":      next.ID.String(),
				"claimant":       claimant,
				"amount":         amount,
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
		logger.Warn("claim packet rejected",
			"event", "packet_claim_rejected",
			"module", application.LogModule,
			"layer", "application",
			"packet_id", cmd.PacketID.String(),
			"claimant", claimant,
			"error", err.Error(),
		)
		u.Metrics.RecordRejected(ctx, "claim", err)
		return ClaimPacketResult{}, err
	}

	u.Metrics.RecordCommitted(ctx, "claim", string(packet.SplitMode), amount)
	logger.Info("packet claimed",
		"event", "packet_claimed",
		"module", application.LogModule,
		"layer", "application",
		"packet_id", packet.ID.String(),
		"claimant", claimant,
		"amount", amount,
		"claimed_number", packet.ClaimedNumber,
		"total_number", packet.TotalNumber,
	)
	return ClaimPacketResult{Packet: packet, Amount: amount}, nil
}

func (u ClaimPacketUseCase) now() time.Time {
	if u.Clock == nil {
		return time.Now().UTC()
	}
	return u.Clock.Now().UTC()
}

func withPacketLock(
	ctx context.Context,
	locker ports.PacketLocker,
	packetID entities.PacketID,
	fn func(ctx context.Context) error,
) error {
	if locker == nil {
		return fn(ctx)
	}
	return locker.WithPacketLock(ctx, packetID, fn)
}
