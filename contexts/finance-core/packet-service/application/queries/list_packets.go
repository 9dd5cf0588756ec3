package queries

import (
	"context"
	"log/slog"
	"strings"

	application "redpacket/contexts/finance-core/packet-service/application"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"
	"redpacket/contexts/finance-core/packet-service/ports"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type ListPacketsQuery struct {
	Creator string
	Limit   int
	Offset  int
}

type ListPacketsUseCase struct {
	Packets ports.PacketStore
	Clock   ports.Clock
	Logger  *slog.Logger
}

// Execute lists a creator's packets, newest first.
func (uc ListPacketsUseCase) Execute(ctx context.Context, query ListPacketsQuery) ([]PacketView, error) {
	logger := application.ResolveLogger(uc.Logger)
	creator := strings.TrimSpace(query.Creator)
	if creator == "" || query.Offset < 0 {
		return nil, domainerrors.ErrInvalidRequest
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	packets, err := uc.Packets.ListPacketsByCreator(ctx, creator, limit, query.Offset)
	if err != nil {
		return nil, err
	}
	now := resolveNow(uc.Clock)
	items := make([]PacketView, 0, len(packets))
	for _, packet := range packets {
		items = append(items, PacketView{Packet: packet, State: packet.State(now)})
	}
	logger.Info("packets listed",
		"event", "packets_listed",
		"module", application.LogModule,
		"layer", "application",
		"creator", creator,
		"count", len(items),
	)
	return items, nil
}
